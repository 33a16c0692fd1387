package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Heartbeat answers the fixed liveness marker on /test
func (h *HealthHandler) Heartbeat(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"test": true})
}

// HealthCheck handles the health endpoint
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
