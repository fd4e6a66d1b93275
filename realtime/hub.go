package realtime

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"go.uber.org/zap"

	"pos-service/logger"
)

// Envelope is the wire frame for channel events in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub fans committed state changes out to every connected session. All
// publishes flow through one goroutine, so clients observe a single global
// event order; per-product ordering falls out of that. Delivery is
// fire-and-forget: slow or disconnected clients miss events and are
// expected to pull a fresh snapshot on reconnect.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	clients    map[*Client]bool
	connected  atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.connected.Store(0)
			return
		case client := <-h.register:
			h.clients[client] = true
			h.connected.Store(int64(len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.connected.Store(int64(len(h.clients)))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop it rather than stall the fan-out.
					delete(h.clients, client)
					close(client.send)
					h.connected.Store(int64(len(h.clients)))
				}
			}
		}
	}
}

// Publish implements services.EventPublisher.
func (h *Hub) Publish(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Log.Error("event marshal failed", zap.String("event", event), zap.Error(err))
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		logger.Log.Error("envelope marshal failed", zap.String("event", event), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- frame:
	default:
		logger.Log.Warn("broadcast queue full, event dropped", zap.String("event", event))
	}
}

// ClientCount reports the connected-terminal gauge.
func (h *Hub) ClientCount() int64 {
	return h.connected.Load()
}
