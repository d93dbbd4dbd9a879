package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"classfinder/middleware"
	"classfinder/models"
	"classfinder/services/portal"
	"classfinder/services/query"
	"classfinder/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrLoginRequired is the detail sent when no credentials are available.
const ErrLoginRequired = "Login required"

// QueryHandler serves POST /api/query.
type QueryHandler struct {
	Service query.QueryService
	// Fallback credentials for requests without a session; may be nil.
	DefaultCredentials func() (models.Credentials, bool)
}

func NewQueryHandler(svc query.QueryService, defaults func() (models.Credentials, bool)) *QueryHandler {
	return &QueryHandler{Service: svc, DefaultCredentials: defaults}
}

// Query resolves credentials, runs the query and maps failures to status codes.
func (h *QueryHandler) Query(c *gin.Context) {
	logger := getLogger(c)

	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Invalid query request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	creds, ok := h.credentials(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, ErrLoginRequired)
		return
	}

	result, err := h.Service.Query(c.Request.Context(), creds, req.Week)
	if err != nil {
		logger.Error("Query failed", zap.Error(err), zap.String("user", creds.Username))
		status, detail := statusForPortalError(err)
		utils.JSONError(c, status, detail)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QueryHandler) credentials(c *gin.Context) (models.Credentials, bool) {
	if creds, ok := middleware.SessionCredentials(c); ok {
		return creds, true
	}
	if h.DefaultCredentials != nil {
		return h.DefaultCredentials()
	}
	return models.Credentials{}, false
}

// statusForPortalError maps service errors to an HTTP status and detail.
func statusForPortalError(err error) (int, string) {
	switch {
	case errors.Is(err, portal.ErrLoginFailed):
		return http.StatusUnauthorized, portal.ErrLoginFailed.Error()
	case errors.Is(err, portal.ErrBreakerOpen):
		return http.StatusServiceUnavailable, "Portal temporarily unavailable, try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Portal did not respond in time"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
