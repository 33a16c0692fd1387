package handlers

import (
	"github.com/alimgiray/gmash/internal/services"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint of the service on router
func SetupRoutes(router *gin.Engine, mashService *services.MashService, exportService *services.ExportService) {
	mashHandler := NewMashHandler(mashService, exportService)
	healthHandler := NewHealthHandler()
	notFoundHandler := NewNotFoundHandler()

	router.GET("/mash", mashHandler.Mash)
	router.GET("/merge", mashHandler.Mash)

	router.GET("/test", healthHandler.Heartbeat)
	router.GET("/health", healthHandler.HealthCheck)

	router.NoRoute(notFoundHandler.NotFound)
}
