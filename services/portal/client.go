// services/portal/client.go
package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"classfinder/models"

	"go.uber.org/zap"
)

const (
	loginPath    = "/client/login/"
	roomViewPath = "/classroomtimeholdresult/room_view/"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Page markers: the login form title, and the logout link shown once signed in.
	loginMarker  = "用户登录"
	logoutMarker = "退出"

	maxBodyBytes = 8 << 20
)

// Observer receives the timing and outcome of every portal request.
type Observer interface {
	PortalRequest(d time.Duration, success bool)
}

// Portal holds what every session shares: address, breaker and logging.
type Portal struct {
	baseURL   *url.URL
	timeout   time.Duration
	breaker   *Breaker
	logger    *zap.Logger
	observer  Observer
	Transport http.RoundTripper
}

func New(baseURL string, timeout time.Duration, breaker *Breaker, logger *zap.Logger, obs Observer) (*Portal, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid portal base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid portal base url %q", baseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if breaker == nil {
		breaker = NewBreaker("portal", BreakerConfig{MaxFailures: 3, ResetTimeout: 30 * time.Second}, logger)
	}
	return &Portal{baseURL: u, timeout: timeout, breaker: breaker, logger: logger, observer: obs}, nil
}

func (p *Portal) Breaker() *Breaker {
	return p.breaker
}

// NewSession starts a cookie session; the portal ties login state to cookies
// so each query uses its own.
func (p *Portal) NewSession() (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Session{
		portal: p,
		http:   &http.Client{Timeout: p.timeout, Jar: jar, Transport: p.Transport},
	}, nil
}

func (p *Portal) url(path string, query url.Values) *url.URL {
	u := *p.baseURL
	u.Path = u.Path + path
	u.RawQuery = query.Encode()
	return &u
}

// Session is one logged-in (or logging-in) conversation with the portal.
type Session struct {
	portal *Portal
	http   *http.Client
}

// Login submits the portal's form login, carrying its CSRF token.
func (s *Session) Login(ctx context.Context, creds models.Credentials) error {
	loginURL := s.portal.url(loginPath, nil)

	page, err := s.get(ctx, loginURL)
	if err != nil {
		return fmt.Errorf("failed to load login page: %w", err)
	}

	token := csrfToken(page)
	if token == "" {
		for _, c := range s.http.Jar.Cookies(loginURL) {
			if c.Name == "csrftoken" {
				token = c.Value
			}
		}
	}

	form := url.Values{
		"loginname":           {creds.Username},
		"password":            {creds.Password},
		"csrfmiddlewaretoken": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", loginURL.String())

	body, err := s.do(req)
	if err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}
	if isLoginPage(body) {
		s.portal.logger.Info("portal rejected credentials", zap.String("user", creds.Username))
		return ErrLoginFailed
	}
	return nil
}

// RoomView fetches the occupancy grid. A nil week asks for the portal's
// current week; an empty buildingID for its default building.
func (s *Session) RoomView(ctx context.Context, week *int, buildingID string) (*Page, error) {
	query := url.Values{}
	if week != nil {
		query.Set("zc", strconv.Itoa(*week))
	}
	if buildingID != "" {
		query.Set("jxlh", buildingID)
	}

	body, err := s.get(ctx, s.portal.url(roomViewPath, query))
	if err != nil {
		return nil, fmt.Errorf("failed to load room view: %w", err)
	}
	if isLoginPage(body) {
		return nil, ErrLoginFailed
	}
	return ParsePage(strings.NewReader(body))
}

func (s *Session) get(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	return s.do(req)
}

// do sends req through the breaker. Transport errors and 5xx trip it;
// 4xx are returned as StatusError without counting against the portal.
func (s *Session) do(req *http.Request) (string, error) {
	req.Header.Set("User-Agent", userAgent)

	var (
		body   []byte
		status int
	)
	start := time.Now()
	err := s.portal.breaker.Execute(req.Context(), func(ctx context.Context) error {
		resp, err := s.http.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if status >= http.StatusInternalServerError {
			return &StatusError{URL: req.URL.Path, Code: status}
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return err
	})
	if s.portal.observer != nil {
		s.portal.observer.PortalRequest(time.Since(start), err == nil && status < http.StatusBadRequest)
	}
	if err != nil {
		s.portal.logger.Debug("portal request failed", zap.String("url", req.URL.Path), zap.Error(err))
		return "", err
	}
	if status >= http.StatusBadRequest {
		return "", &StatusError{URL: req.URL.Path, Code: status}
	}
	return string(body), nil
}

func isLoginPage(body string) bool {
	return strings.Contains(body, loginMarker) && !strings.Contains(body, logoutMarker)
}
