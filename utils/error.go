package utils

import (
	"net/http"

	"classfinder/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
					Detail: "Internal Server Error",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized {"detail": ...} error response
func JSONError(c *gin.Context, status int, detail string) {
	logger := GetLogger()
	if status >= http.StatusInternalServerError {
		logger.Error(detail, zap.Int("status", status), zap.String("path", c.Request.URL.Path))
	} else {
		logger.Warn(detail, zap.Int("status", status), zap.String("path", c.Request.URL.Path))
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: detail})
}
