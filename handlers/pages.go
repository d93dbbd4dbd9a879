package handlers

import (
	"net/http"

	"classfinder/utils"
	"classfinder/web"

	"github.com/gin-gonic/gin"
)

// ServeIndex serves the single-page front end.
func ServeIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML())
}

// HealthHandler serves the snapshot kept fresh by the health monitor. It only
// runs the checks itself before the first snapshot exists.
func HealthHandler(checks utils.HealthChecks) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := utils.GetHealthStatus()
		if status.CheckedAt.IsZero() {
			status = utils.CheckHealth(c.Request.Context(), checks)
		}
		code := http.StatusOK
		if status.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
