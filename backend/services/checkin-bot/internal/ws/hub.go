package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/metrics"
	"fleetcheck/backend/services/checkin-bot/internal/models"
)

// Hub tracks live feed clients and fans committed events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint64]*Client
	nextID  uint64
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewHub(m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{clients: make(map[uint64]*Client), metrics: m, logger: logger}
}

func (h *Hub) nextClientID() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	return h.nextID
}

func (h *Hub) Add(client *Client) {
	h.mu.Lock()
	h.clients[client.ID()] = client
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetFeedClients(n)
}

func (h *Hub) Remove(id uint64) {
	h.mu.Lock()
	delete(h.clients, id)
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetFeedClients(n)
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends ev as JSON to every connected client.
func (h *Hub) Broadcast(ev models.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("encode feed event", zap.Int64("event_id", ev.ID), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.Send(data)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()
	for _, client := range clients {
		client.Close()
	}
}
