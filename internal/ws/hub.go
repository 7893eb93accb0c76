package ws

import (
	"encoding/json"
	"sync"

	"kodbank/internal/domain"
	"kodbank/internal/logger"
	"kodbank/internal/metrics"
)

// Message is the envelope written to market feed clients.
type Message struct {
	Type   string               `json:"type"`
	Prices map[string]float64   `json:"prices,omitempty"`
	Events []domain.MarketEvent `json:"events,omitempty"`
}

// Hub fans simulator ticks out to connected clients. It implements
// market.Listener; OnTick never blocks the simulator.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	last    []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) OnTick(prices map[string]float64, events []domain.MarketEvent) {
	msg, err := json.Marshal(Message{Type: "prices", Prices: prices, Events: events})
	if err != nil {
		logger.Error("encode market tick", "error", err)
		return
	}

	h.mu.Lock()
	h.last = msg
	var slow []*Client
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.dropLocked(c)
	}
	h.mu.Unlock()

	for _, c := range slow {
		logger.Debug("dropping slow market feed client", "user_id", c.UserID)
	}
}

// Register adds c and queues the latest snapshot so it need not wait a tick.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	metrics.WSClients.Set(float64(len(h.clients)))
	if h.last != nil {
		select {
		case c.Send <- h.last:
		default:
		}
	}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
	metrics.WSClients.Set(float64(len(h.clients)))
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
