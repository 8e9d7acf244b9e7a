package ws

import (
	"encoding/json"
	"sync"

	"metacognition/internal/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgConnected      MessageType = "connected"
	MsgDashboardStale MessageType = "dashboard_stale"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans dashboard events out to every open connection of a user
type Hub struct {
	// userID -> open connections (one per tab)
	conns map[string]map[*Connection]struct{}
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once

	log *logger.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	UserID string
	Send   chan []byte
	Hub    *Hub
}

// BroadcastMessage is a message addressed to all of a user's connections
type BroadcastMessage struct {
	UserID  string
	Message *Message
}

// NewHub creates a hub and starts its event loop
func NewHub(log *logger.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		log:        log.Component("ws"),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for userID, set := range h.conns {
				for conn := range set {
					close(conn.Send)
				}
				delete(h.conns, userID)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.UserID] == nil {
				h.conns[conn.UserID] = make(map[*Connection]struct{})
			}
			h.conns[conn.UserID][conn] = struct{}{}
			n := len(h.conns[conn.UserID])
			h.mu.Unlock()
			h.log.WithField("user_id", conn.UserID).WithField("connections", n).Debug("dashboard connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.UserID]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, conn.UserID)
					}
				}
			}
			h.mu.Unlock()
			h.log.WithField("user_id", conn.UserID).Debug("dashboard disconnected")

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.WithError(err).Warn("marshal ws message")
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.UserID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// NotifyUser queues a message for every connection of a user (implements service.Broadcaster).
// It never blocks the caller; when the queue is full the event is dropped.
func (h *Hub) NotifyUser(userID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).Warn("marshal ws payload")
		return
	}

	msg := &BroadcastMessage{
		UserID:  userID,
		Message: &Message{Type: MessageType(msgType), Payload: data},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.log.WithField("user_id", userID).Warn("ws broadcast queue full, dropping event")
	}
}

// Connections returns how many dashboards a user has open
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// Close stops the event loop and closes every connection
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
