package routes

import (
	"time"

	"classfinder/config"
	"classfinder/handlers"
	"classfinder/middleware"
	"classfinder/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes registers the query and session endpoints.
func RegisterAPIRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
		api.Use(middleware.SessionMiddleware(hb.AuthService))
		api.POST("/query", hb.QueryHandler)
		api.POST("/login", hb.LoginHandler)
		api.POST("/logout", hb.LogoutHandler)
	}
}

// RegisterPageRoutes serves the browser front end and its demo dataset.
func RegisterPageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/", hb.IndexHandler)
	r.StaticFS("/static", web.StaticFS())
}

// RegisterOpsRoutes registers health and metrics endpoints.
func RegisterOpsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
	if hb.Metrics != nil {
		r.GET("/metrics", gin.WrapH(hb.Metrics.Handler()))
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterAPIRoutes(r, hb)
	RegisterPageRoutes(r, hb)
	RegisterOpsRoutes(r, hb)
}
