package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rodrigofuentes/gympulse-backend/pkg/logger"
	"github.com/rodrigofuentes/gympulse-backend/pkg/metrics"
)

// Event names pushed over the websocket fanout.
const (
	EventCheckinUpdate   = "checkin_update"
	EventDashboardUpdate = "dashboard_update"
)

// Envelope is the frame shape every subscriber receives.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Publisher is the broadcast surface handed to domain services.
type Publisher interface {
	Publish(event string, data any)
	SubscriberCount() int
}

// Hub fans events out to connected websocket subscribers. A subscriber
// whose send buffer fills up is dropped rather than allowed to stall
// the rest.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	logg    *logger.Logger
	metrics *metrics.RealtimeMetrics
}

// NewHub constructs an empty hub. Metrics may be nil.
func NewHub(logg *logger.Logger, rtm *metrics.RealtimeMetrics) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logg:    logg,
		metrics: rtm,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetSubscribers(count)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetSubscribers(count)
}

// Publish serializes the event once and queues it to every subscriber.
// Subscribers that cannot keep up are evicted.
func (h *Hub) Publish(event string, data any) {
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		if h.logg != nil {
			h.logg.Error(context.Background(), "marshal realtime event", err)
		}
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.unregister(c)
		h.metrics.IncDropped()
	}
	h.metrics.IncBroadcast(event)
}

// SubscriberCount reports how many sockets are currently connected.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.metrics.SetSubscribers(0)
}
