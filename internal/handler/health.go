package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root is the liveness probe.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "BRAI API server is running"})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.info.Name,
		"version": h.info.Version,
		"mode":    h.info.Mode,
	})
}
