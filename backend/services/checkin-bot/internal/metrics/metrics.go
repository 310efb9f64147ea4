package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the bot's prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	UpdatesHandled  *prometheus.CounterVec
	UpdateDuration  prometheus.Histogram
	AuthFailures    prometheus.Counter
	EventsCommitted *prometheus.CounterVec
	CommitFailures  prometheus.Counter
	NotifyFailures  prometheus.Counter
	ActiveSessions  prometheus.Gauge
	FeedClients     prometheus.Gauge
}

// NewMetrics registers the collectors on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpdatesHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_handled_total",
			Help:      "Inbound chat updates by kind",
		}, []string{"kind"}),
		UpdateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_duration_seconds",
			Help:      "Time spent handling one chat update",
			Buckets:   prometheus.DefBuckets,
		}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "PIN entries that matched no driver",
		}),
		EventsCommitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_committed_total",
			Help:      "Persisted check events by mode",
		}, []string{"mode"}),
		CommitFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commit_failures_total",
			Help:      "Event inserts that failed",
		}),
		NotifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_notify_failures_total",
			Help:      "Dispatcher messages that could not be delivered",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Conversations held in memory",
		}),
		FeedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_clients",
			Help:      "Connected live feed websocket clients",
		}),
	}
}

func (m *Metrics) ObserveUpdate(kind string, took time.Duration) {
	if m == nil {
		return
	}
	m.UpdatesHandled.WithLabelValues(kind).Inc()
	m.UpdateDuration.Observe(took.Seconds())
}

func (m *Metrics) AuthFailed() {
	if m == nil {
		return
	}
	m.AuthFailures.Inc()
}

func (m *Metrics) Committed(mode string) {
	if m == nil {
		return
	}
	m.EventsCommitted.WithLabelValues(mode).Inc()
}

func (m *Metrics) CommitFailed() {
	if m == nil {
		return
	}
	m.CommitFailures.Inc()
}

func (m *Metrics) NotifyFailed() {
	if m == nil {
		return
	}
	m.NotifyFailures.Inc()
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) SetFeedClients(n int) {
	if m == nil {
		return
	}
	m.FeedClients.Set(float64(n))
}
