package handlers

import (
	"errors"
	"net/http"
	"time"

	"classfinder/models"
	"classfinder/services/auth"
	"classfinder/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves login and logout.
type AuthHandler struct {
	Service      auth.AuthService
	SessionTTL   time.Duration
	SecureCookie bool
}

func NewAuthHandler(svc auth.AuthService, ttl time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{Service: svc, SessionTTL: ttl, SecureCookie: secure}
}

// Login verifies the credentials against the portal and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	logger := getLogger(c)

	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid login request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	token, err := h.Service.Authenticate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrMissingCredentials) {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		logger.Info("Login failed", zap.String("user", req.Username), zap.Error(err))
		status, detail := statusForPortalError(err)
		if status == http.StatusInternalServerError {
			status, detail = http.StatusBadGateway, "Portal unreachable: "+err.Error()
		}
		utils.JSONError(c, status, detail)
		return
	}

	h.setCookie(c, token, int(h.SessionTTL.Seconds()))
	logger.Info("Login succeeded", zap.String("user", req.Username))
	c.JSON(http.StatusOK, models.LoginResponse{Status: "ok", Username: req.Username})
}

// Logout drops the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookie, value, maxAge, "/", "", h.SecureCookie, true)
}
