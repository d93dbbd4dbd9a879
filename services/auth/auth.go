// services/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classfinder/models"
	"classfinder/utils"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// passwordClaim holds the sealed portal password inside the session token.
const passwordClaim = "pwd"

// Verifier checks credentials against the portal.
type Verifier interface {
	Verify(ctx context.Context, creds models.Credentials) error
}

// AuthService turns portal credentials into a session token and back.
type AuthService interface {
	Authenticate(ctx context.Context, creds models.Credentials) (string, error)
	Resolve(token string) (models.Credentials, error)
}

// DefaultAuthService keeps no server-side state: the password travels sealed
// inside the signed token and is only opened for the next portal login.
type DefaultAuthService struct {
	Verifier Verifier
	Secret   []byte
	TTL      time.Duration
}

func (s *DefaultAuthService) Authenticate(ctx context.Context, creds models.Credentials) (string, error) {
	if creds.Empty() {
		return "", ErrMissingCredentials
	}
	if err := s.Verifier.Verify(ctx, creds); err != nil {
		return "", err
	}

	sealed, err := utils.Seal(creds.Password, s.sealKey())
	if err != nil {
		return "", fmt.Errorf("failed to seal password: %w", err)
	}
	token, err := utils.GenerateToken(s.Secret, creds.Username, map[string]interface{}{passwordClaim: sealed}, s.TTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

func (s *DefaultAuthService) Resolve(token string) (models.Credentials, error) {
	claims, err := utils.ValidateToken(s.Secret, token)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	user, _ := claims["sub"].(string)
	sealed, _ := claims[passwordClaim].(string)
	if user == "" || sealed == "" {
		return models.Credentials{}, ErrInvalidSession
	}
	password, err := utils.Open(sealed, s.sealKey())
	if err != nil {
		return models.Credentials{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return models.Credentials{Username: user, Password: password}, nil
}

// sealKey keeps the encryption key distinct from the signing key.
func (s *DefaultAuthService) sealKey() string {
	return "seal:" + string(s.Secret)
}
