package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/vedsathwik275/envision-sub000/internal/models"
	"github.com/vedsathwik275/envision-sub000/internal/services"
)

// SourcesHandler exposes the aggregation store and per-source controls
type SourcesHandler struct {
	store  *services.AggregationStore
	fanOut *services.FanOutService
	health *services.SourceHealthService
}

// NewSourcesHandler creates a new sources handler
func NewSourcesHandler(store *services.AggregationStore, fanOut *services.FanOutService, health *services.SourceHealthService) *SourcesHandler {
	return &SourcesHandler{store: store, fanOut: fanOut, health: health}
}

// List returns the current snapshot of all four slots plus readiness
// GET /api/sources
func (h *SourcesHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sources": h.store.Snapshot(),
		"ready":   h.store.IsReady(),
	})
}

// Refresh re-runs a single source against the remembered lane
// POST /api/sources/:key/refresh
func (h *SourcesHandler) Refresh(c *fiber.Ctx) error {
	key, err := models.ParseSourceKey(c.Params("key"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown source key: " + c.Params("key"),
		})
	}

	var req models.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	log.Printf("🔄 [SOURCES] Refreshing %s (force: %v)", key, req.Force)
	update, err := h.fanOut.Refresh(c.Context(), key, req.Lane, req.ShipDate, req.Force)
	if err != nil {
		log.Printf("❌ [SOURCES] Refresh of %s failed: %v", key, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to refresh source",
		})
	}

	return c.JSON(update)
}

// Reset clears every slot, the quote cache and the remembered lane
// POST /api/sources/reset
func (h *SourcesHandler) Reset(c *fiber.Ctx) error {
	h.fanOut.Reset(c.Context())
	return c.JSON(fiber.Map{
		"status":  "reset",
		"sources": h.store.Snapshot(),
		"ready":   h.store.IsReady(),
	})
}

// Health returns the latest collaborator probe verdicts
// GET /api/sources/health
func (h *SourcesHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sources": h.health.Statuses(),
	})
}
