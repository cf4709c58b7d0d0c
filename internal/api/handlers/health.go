package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and whether the pipeline is configured
type HealthHandler struct {
	geminiConfigured bool
}

func NewHealthHandler(geminiConfigured bool) *HealthHandler {
	return &HealthHandler{geminiConfigured: geminiConfigured}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	if !h.geminiConfigured {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"gemini": gin.H{
			"configured": h.geminiConfigured,
		},
	})
}
