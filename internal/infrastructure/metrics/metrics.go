package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons recorded on EventsDropped.
const (
	ReasonOffline    = "offline"
	ReasonBufferFull = "buffer_full"
	ReasonQueueFull  = "queue_full"
	ReasonMalformed  = "malformed"
)

// Realtime holds the collectors for the live connection layer. Each instance
// owns its registry so tests can build as many as they like.
type Realtime struct {
	registry *prometheus.Registry

	ConnectionsOpen    prometheus.Gauge
	OnlineUsers        prometheus.Gauge
	EventsRouted       *prometheus.CounterVec
	EventsDropped      *prometheus.CounterVec
	PresenceBroadcasts prometheus.Counter
	StaleDisconnects   prometheus.Counter
}

// NewRealtime creates and registers the realtime collectors under namespace.
func NewRealtime(namespace string) *Realtime {
	m := &Realtime{
		registry: prometheus.NewRegistry(),

		ConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections_open",
			Help:      "Number of open websocket connections, anonymous included",
		}),
		OnlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_online_users",
			Help:      "Number of identities currently mapped to a live connection",
		}),
		EventsRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_events_routed_total",
			Help:      "Events queued onto a live connection, by event type",
		}, []string{"type"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_events_dropped_total",
			Help:      "Events not delivered, by event type and reason",
		}, []string{"type", "reason"}),
		PresenceBroadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_presence_broadcasts_total",
			Help:      "Presence snapshots pushed to all connections",
		}),
		StaleDisconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_stale_disconnects_total",
			Help:      "Disconnects that did not evict a newer connection of the same user",
		}),
	}

	m.registry.MustRegister(
		m.ConnectionsOpen,
		m.OnlineUsers,
		m.EventsRouted,
		m.EventsDropped,
		m.PresenceBroadcasts,
		m.StaleDisconnects,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry.
func (m *Realtime) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Realtime) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Routed counts one delivery of eventType.
func (m *Realtime) Routed(eventType string) {
	if m == nil {
		return
	}
	m.EventsRouted.WithLabelValues(eventType).Inc()
}

// Dropped counts one lost delivery of eventType.
func (m *Realtime) Dropped(eventType, reason string) {
	if m == nil {
		return
	}
	m.EventsDropped.WithLabelValues(eventType, reason).Inc()
}

// SetConnections records the open connection and online identity counts.
func (m *Realtime) SetConnections(open, online int) {
	if m == nil {
		return
	}
	m.ConnectionsOpen.Set(float64(open))
	m.OnlineUsers.Set(float64(online))
}

// PresenceBroadcast counts one presence fan-out.
func (m *Realtime) PresenceBroadcast() {
	if m == nil {
		return
	}
	m.PresenceBroadcasts.Inc()
}

// StaleDisconnect counts one disconnect that left the mapping alone.
func (m *Realtime) StaleDisconnect() {
	if m == nil {
		return
	}
	m.StaleDisconnects.Inc()
}
