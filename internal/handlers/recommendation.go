package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/vedsathwik275/envision-sub000/internal/models"
	"github.com/vedsathwik275/envision-sub000/internal/services"
)

// RecommendationHandler triggers the recommendation engine
type RecommendationHandler struct {
	recommendation *services.RecommendationService
	fanOut         *services.FanOutService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendation *services.RecommendationService, fanOut *services.FanOutService) *RecommendationHandler {
	return &RecommendationHandler{recommendation: recommendation, fanOut: fanOut}
}

// Handle asks the engine for a lane recommendation from whatever the
// store currently holds. One upstream attempt per request.
// POST /api/recommendation
func (h *RecommendationHandler) Handle(c *fiber.Ctx) error {
	var req models.RecommendationAPIRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}
	if req.Format != "" && req.Format != "markdown" && req.Format != "html" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "format must be \"markdown\" or \"html\"",
		})
	}

	lane, _, _ := h.fanOut.LastLane()
	result, used, err := h.recommendation.Request(c.Context(), lane)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "No source data available yet. Perform more analyses first.",
			})
		}
		if errors.Is(err, models.ErrUpstream) {
			log.Printf("❌ [RECOMMENDATION] Engine call failed: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "The recommendation engine is unavailable right now. Please try again.",
			})
		}
		log.Printf("❌ [RECOMMENDATION] Unexpected failure: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate recommendation",
		})
	}

	resp := models.RecommendationAPIResponse{
		Recommendation: result.Recommendation,
		Model:          result.Model,
		SourcesUsed:    used,
	}
	if req.Format == "html" {
		html, err := h.recommendation.RenderHTML(result.Recommendation)
		if err != nil {
			log.Printf("⚠️ [RECOMMENDATION] HTML rendering failed: %v", err)
		} else {
			resp.HTML = html
		}
	}

	log.Printf("✅ [RECOMMENDATION] Generated from %d sources", len(used))
	return c.JSON(resp)
}
