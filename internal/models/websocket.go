package models

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// ClientMessage represents a message from the client
type ClientMessage struct {
	Type string `json:"type"` // "ping" or "snapshot"
}

// ServerMessage represents a message pushed to the client
type ServerMessage struct {
	Type     string                    `json:"type"` // "source_update", "store_reset", "snapshot", "pong", "error"
	Update   *SourceUpdate             `json:"update,omitempty"`
	Snapshot map[SourceKey]SourceEntry `json:"snapshot,omitempty"`
	Ready    *bool                     `json:"ready,omitempty"` // set on "snapshot" and "store_reset"
	Message  string                    `json:"message,omitempty"`
}

// ClientConnection represents a single WebSocket subscriber. Writes go
// through WriteChan so only the write pump touches the underlying conn.
type ClientConnection struct {
	ConnID    string
	ClientIP  string
	Conn      *websocket.Conn
	CreatedAt time.Time
	WriteChan chan ServerMessage
	StopChan  chan bool
	Mutex     sync.Mutex
	closed    bool
}

// SafeSend sends a message to WriteChan safely, returning false if the channel is closed
func (cc *ClientConnection) SafeSend(msg ServerMessage) bool {
	cc.Mutex.Lock()
	if cc.closed {
		cc.Mutex.Unlock()
		return false
	}
	cc.Mutex.Unlock()

	// Use defer/recover to handle panic from send on closed channel
	defer func() {
		if r := recover(); r != nil {
			cc.Mutex.Lock()
			cc.closed = true
			cc.Mutex.Unlock()
		}
	}()

	cc.WriteChan <- msg
	return true
}

// MarkClosed marks the connection as closed
func (cc *ClientConnection) MarkClosed() {
	cc.Mutex.Lock()
	cc.closed = true
	cc.Mutex.Unlock()
}

// IsClosed returns true if the connection has been marked as closed
func (cc *ClientConnection) IsClosed() bool {
	cc.Mutex.Lock()
	defer cc.Mutex.Unlock()
	return cc.closed
}
