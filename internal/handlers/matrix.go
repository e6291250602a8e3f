package handlers

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vedsathwik275/envision-sub000/internal/models"
	"github.com/vedsathwik275/envision-sub000/internal/ratematrix"
	"github.com/vedsathwik275/envision-sub000/internal/services"
)

// MatrixHandler serves the carrier x ship-date rate matrix
type MatrixHandler struct {
	store *services.AggregationStore
}

// NewMatrixHandler creates a new matrix handler
func NewMatrixHandler(store *services.AggregationStore) *MatrixHandler {
	return &MatrixHandler{store: store}
}

// Build computes a matrix from caller-supplied quotes
// POST /api/spot/matrix
func (h *MatrixHandler) Build(c *fiber.Ctx) error {
	var req models.MatrixRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	return c.JSON(ratematrix.Build(req.Quotes))
}

// FromStore computes the matrix from the stored spot analysis
// GET /api/spot/matrix
func (h *MatrixHandler) FromStore(c *fiber.Ctx) error {
	payload, err := h.spotPayload()
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"origin_city":      payload.OriginCity,
		"destination_city": payload.DestinationCity,
		"shipment_date":    payload.ShipmentDate,
		"matrix":           ratematrix.Build(ratematrix.FromSpotPayload(*payload)),
	})
}

// Export streams the stored matrix as an XLSX workbook
// GET /api/spot/matrix/export
func (h *MatrixHandler) Export(c *fiber.Ctx) error {
	payload, err := h.spotPayload()
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	matrix := ratematrix.Build(ratematrix.FromSpotPayload(*payload))
	file, err := ratematrix.ExportXLSX(matrix, payload.OriginCity, payload.DestinationCity)
	if err != nil {
		log.Printf("❌ [MATRIX] Export failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build workbook",
		})
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		log.Printf("❌ [MATRIX] Workbook write failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to write workbook",
		})
	}

	filename := fmt.Sprintf("spot-rate-matrix-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

func (h *MatrixHandler) spotPayload() (*models.SpotAnalysisPayload, error) {
	entry, err := h.store.Get(models.SourceSpotAnalysis)
	if err != nil {
		return nil, err
	}
	if !entry.HasData {
		return nil, fmt.Errorf("no spot analysis data available yet")
	}
	payload, ok := entry.Payload.(*models.SpotAnalysisPayload)
	if !ok {
		return nil, fmt.Errorf("no spot analysis data available yet")
	}
	return payload, nil
}
