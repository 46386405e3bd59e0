package events

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Record lifecycle event names pushed to WebSocket subscribers.
const (
	EventCreated = "media_created"
	EventUpdated = "media_updated"
	EventDeleted = "media_deleted"
)

// Hub maintains the set of WebSocket subscribers and fans record events
// out to them. With Redis pub/sub configured the fan-out goes through the
// shared channel so every instance (including this one) broadcasts the
// event exactly once; without Redis it is local only.
type Hub struct {
	clients   map[string]*Client
	mu        sync.RWMutex
	logger    *zap.Logger
	pub       Publisher
	cancelSub func()
}

// Publisher publishes an event to the shared channel for cross-instance broadcast.
type Publisher interface {
	PublishMediaEvent(event string, payload []byte) error
}

// Subscriber subscribes to the shared channel and invokes handler for incoming events.
type Subscriber interface {
	SubscribeMediaEvents(handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates the event hub. pub and sub may be nil, in which case
// events only reach clients connected to this instance.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	h := &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
	}
	if sub != nil {
		cancel, err := sub.SubscribeMediaEvents(func(event string, payload []byte) {
			h.Broadcast(event, json.RawMessage(payload))
		})
		if err != nil {
			logger.Warn("event subscription failed, broadcasting locally only", zap.Error(err))
		} else {
			h.cancelSub = cancel
		}
	}
	return h
}

// Register adds a connected client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("event client connected", zap.String("client_id", c.ID))
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("event client disconnected", zap.String("client_id", c.ID))
}

// Publish sends an event to all subscribers. With a Publisher configured
// it goes through the shared channel only; the subscription callback then
// broadcasts once per instance, so local clients never see duplicates.
func (h *Hub) Publish(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishMediaEvent(event, data); err == nil {
			return
		}
		h.logger.Debug("event publish failed, broadcasting locally", zap.String("event", event))
	}
	h.Broadcast(event, json.RawMessage(data))
}

// Broadcast sends a message to all clients on this instance (local only).
func (h *Hub) Broadcast(event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := Message{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the shared-channel subscription.
func (h *Hub) Close() {
	if h.cancelSub != nil {
		h.cancelSub()
	}
}
