package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// LoopStatus reports whether the presentation loop is running
type LoopStatus interface {
	IsRunning() bool
}

// HealthHandler handles health check requests
type HealthHandler struct {
	loop LoopStatus
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(loop LoopStatus) *HealthHandler {
	return &HealthHandler{loop: loop}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Loop    struct {
		Running bool `json:"running"`
	} `json:"loop"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	response.Loop.Running = h.loop.IsRunning()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.loop.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "presentation loop not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
