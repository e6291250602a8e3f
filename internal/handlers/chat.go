package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vedsathwik275/envision-sub000/internal/laneparser"
	"github.com/vedsathwik275/envision-sub000/internal/models"
	"github.com/vedsathwik275/envision-sub000/internal/services"
)

// ChatHandler ingests finished conversation turns
type ChatHandler struct {
	fanOut *services.FanOutService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(fanOut *services.FanOutService) *ChatHandler {
	return &ChatHandler{fanOut: fanOut}
}

// HandleTurn extracts the lane from one conversation turn and fans out
// to every source. By default the fetches run in the background and land
// over the websocket; wait=true blocks until all four updates arrive.
// POST /api/chat/turn
func (h *ChatHandler) HandleTurn(c *fiber.Ctx) error {
	var req models.TurnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.UserMessage == "" && req.AssistantAnswer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_message or assistant_answer is required",
		})
	}

	turnID := uuid.New().String()
	lane := laneparser.Parse(req.UserMessage, req.AssistantAnswer)
	log.Printf("💬 [TURN] %s lane=%q usable=%v", turnID, lane.Describe(), lane.Usable())

	resp := models.TurnResponse{
		TurnID:     turnID,
		LaneInfo:   lane,
		Usable:     lane.Usable(),
		Dispatched: h.fanOut.Keys(),
	}
	if !lane.Usable() {
		resp.Message = services.NoLaneMessage
	}

	updates := h.fanOut.Dispatch(turnID, lane, req.ShipDate)
	status := fiber.StatusAccepted
	if req.Wait {
		for update := range updates {
			resp.Updates = append(resp.Updates, update)
		}
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(resp)
}
