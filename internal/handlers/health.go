package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vedsathwik275/envision-sub000/internal/services"
)

var startTime = time.Now()

// HealthHandler handles health check requests
type HealthHandler struct {
	connManager *services.ConnectionManager
	store       *services.AggregationStore
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(connManager *services.ConnectionManager, store *services.AggregationStore) *HealthHandler {
	return &HealthHandler{connManager: connManager, store: store}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(startTime).Seconds()),
		"connections":    h.connManager.Count(),
		"ready":          h.store.IsReady(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}
