package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/vedsathwik275/envision-sub000/internal/models"
	"github.com/vedsathwik275/envision-sub000/internal/services"
)

const readDeadline = 90 * time.Second

// WebSocketHandler pushes live source updates to subscribers
type WebSocketHandler struct {
	connManager *services.ConnectionManager
	store       *services.AggregationStore
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(connManager *services.ConnectionManager, store *services.AggregationStore) *WebSocketHandler {
	return &WebSocketHandler{connManager: connManager, store: store}
}

// Handle handles a new WebSocket subscriber
func (h *WebSocketHandler) Handle(c *websocket.Conn) {
	connID := uuid.New().String()
	clientIP, _ := c.Locals("client_ip").(string)

	// Signals the ping goroutine to stop
	done := make(chan struct{})

	conn := &models.ClientConnection{
		ConnID:    connID,
		ClientIP:  clientIP,
		Conn:      c,
		CreatedAt: time.Now(),
		WriteChan: make(chan models.ServerMessage, 64),
		StopChan:  make(chan bool, 1),
	}

	h.connManager.Add(conn)
	defer func() {
		close(done)
		conn.MarkClosed()
		h.connManager.Remove(connID)
	}()

	c.SetReadDeadline(time.Now().Add(readDeadline))
	c.SetPongHandler(func(appData string) error {
		c.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go h.pingLoop(conn, done)
	go h.writeLoop(conn)

	// New subscribers immediately see the current card states
	conn.WriteChan <- h.snapshotMessage()

	h.readLoop(conn)
}

// pingLoop keeps the connection alive between source updates
func (h *WebSocketHandler) pingLoop(conn *models.ClientConnection, done <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			conn.Mutex.Lock()
			if err := conn.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				log.Printf("⚠️ Ping failed for %s: %v", conn.ConnID, err)
				conn.Mutex.Unlock()
				return
			}
			conn.Mutex.Unlock()
		}
	}
}

// writeLoop drains WriteChan onto the wire; it exits when the channel
// closes or a write fails
func (h *WebSocketHandler) writeLoop(conn *models.ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Panic in writeLoop: %v", r)
		}
	}()

	for msg := range conn.WriteChan {
		if err := conn.Conn.WriteJSON(msg); err != nil {
			log.Printf("❌ WebSocket write error for %s: %v", conn.ConnID, err)
			return
		}
	}
}

// readLoop handles incoming messages from the subscriber
func (h *WebSocketHandler) readLoop(conn *models.ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Panic in readLoop: %v", r)
		}
	}()

	for {
		_, msg, err := conn.Conn.ReadMessage()
		if err != nil {
			log.Printf("❌ WebSocket read error for %s: %v", conn.ConnID, err)
			break
		}
		conn.Conn.SetReadDeadline(time.Now().Add(readDeadline))

		var clientMsg models.ClientMessage
		if err := json.Unmarshal(msg, &clientMsg); err != nil {
			log.Printf("⚠️  Invalid message from %s: %v", conn.ConnID, err)
			conn.SafeSend(models.ServerMessage{Type: "error", Message: "Invalid message format"})
			continue
		}

		switch clientMsg.Type {
		case "ping":
			conn.SafeSend(models.ServerMessage{Type: "pong"})
		case "snapshot":
			conn.SafeSend(h.snapshotMessage())
		default:
			log.Printf("⚠️  Unknown message type from %s: %s", conn.ConnID, clientMsg.Type)
		}
	}
}

func (h *WebSocketHandler) snapshotMessage() models.ServerMessage {
	ready := h.store.IsReady()
	return models.ServerMessage{
		Type:     "snapshot",
		Snapshot: h.store.Snapshot(),
		Ready:    &ready,
	}
}
