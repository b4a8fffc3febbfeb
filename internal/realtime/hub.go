// Package realtime pushes notifications to connected users over WebSocket.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains user_id -> set of connections. A user may have several tabs open.
// With a subscriber, messages published by other instances (and the worker) are
// delivered to local connections.
type Hub struct {
	users    map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func()
	mu       sync.RWMutex
	logger   *zap.Logger
	redisSub Subscriber
}

// Subscriber subscribes to a user's channel and invokes handler for incoming events.
type Subscriber interface {
	SubscribeUser(userID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a WebSocket hub. sub may be nil for a single instance.
func NewHub(logger *zap.Logger, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		users:    make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redisSub: sub,
	}
}

// Register adds a client. The first connection of a user starts its subscription.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.users[c.UserID] == nil {
		h.users[c.UserID] = make(map[string]*Client)
		if h.redisSub != nil {
			userID := c.UserID
			cancel, err := h.redisSub.SubscribeUser(userID, func(event string, payload []byte) {
				h.SendToUser(userID, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("subscribe user channel", zap.String("user_id", userID.String()), zap.Error(err))
			} else {
				h.subs[userID] = cancel
			}
		}
	}
	h.users[c.UserID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))
}

// Unregister removes a client. The last connection of a user cancels its subscription.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.users[c.UserID]; ok {
		if _, ok := m[c.ID]; ok {
			delete(m, c.ID)
			close(c.send)
		}
		if len(m) == 0 {
			delete(h.users, c.UserID)
			if cancel, ok := h.subs[c.UserID]; ok {
				cancel()
				delete(h.subs, c.UserID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))
}

// SendToUser delivers a message to every local connection of a user.
// Slow connections with a full buffer miss the message.
func (h *Hub) SendToUser(userID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.users[userID] {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Connections returns the number of local connections of a user.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
