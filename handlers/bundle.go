// File: classfinder/handlers/bundle.go
package handlers

import (
	"classfinder/services/auth"
	"classfinder/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	AuthService auth.AuthService
	Metrics     *utils.Metrics

	// API endpoints
	QueryHandler  gin.HandlerFunc
	LoginHandler  gin.HandlerFunc
	LogoutHandler gin.HandlerFunc

	// Pages and health
	IndexHandler  gin.HandlerFunc
	HealthHandler gin.HandlerFunc
}
