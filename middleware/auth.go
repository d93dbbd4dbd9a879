// middleware/auth.go
package middleware

import (
	"classfinder/models"
	"classfinder/services/auth"
	"classfinder/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CredentialsKey is the gin context key holding the session's credentials.
const CredentialsKey = "credentials"

// SessionMiddleware resolves the session cookie, when present, into portal
// credentials. It never rejects: handlers decide what a missing session means.
func SessionMiddleware(authSvc auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(utils.SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		creds, err := authSvc.Resolve(token)
		if err != nil {
			zap.L().Debug("ignoring invalid session cookie", zap.Error(err))
			c.Next()
			return
		}
		c.Set(CredentialsKey, creds)
		c.Next()
	}
}

// SessionCredentials returns the credentials set by SessionMiddleware.
func SessionCredentials(c *gin.Context) (models.Credentials, bool) {
	v, ok := c.Get(CredentialsKey)
	if !ok {
		return models.Credentials{}, false
	}
	creds, ok := v.(models.Credentials)
	return creds, ok
}
