package metrics

import "github.com/prometheus/client_golang/prometheus"

// RealtimeMetrics tracks the websocket fanout surface.
type RealtimeMetrics struct {
	subscribers prometheus.Gauge
	broadcasts  *prometheus.CounterVec
	dropped     prometheus.Counter
}

// NewRealtimeMetrics registers the realtime hub metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_subscribers",
		Help: "Currently connected websocket subscribers.",
	})
	broadcasts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_broadcasts_total",
		Help: "Events published to subscribers, by event name.",
	}, []string{"event"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realtime_dropped_subscribers_total",
		Help: "Subscribers disconnected because their send buffer filled.",
	})
	reg.MustRegister(subscribers, broadcasts, dropped)
	return &RealtimeMetrics{
		subscribers: subscribers,
		broadcasts:  broadcasts,
		dropped:     dropped,
	}
}

// SetSubscribers records the current subscriber count.
func (r *RealtimeMetrics) SetSubscribers(n int) {
	if r == nil || r.subscribers == nil {
		return
	}
	r.subscribers.Set(float64(n))
}

// IncBroadcast counts one published event.
func (r *RealtimeMetrics) IncBroadcast(event string) {
	if r == nil || r.broadcasts == nil {
		return
	}
	r.broadcasts.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncDropped counts a subscriber evicted for backpressure.
func (r *RealtimeMetrics) IncDropped() {
	if r == nil || r.dropped == nil {
		return
	}
	r.dropped.Inc()
}
