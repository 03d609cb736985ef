package websocket

import (
	"log/slog"

	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/infrastructure/metrics"
)

// PresenceBroadcaster pushes the full online set to every open connection.
type PresenceBroadcaster struct {
	registry *Registry
	metrics  *metrics.Realtime
	logger   *slog.Logger
}

// NewPresenceBroadcaster creates a broadcaster reading from registry.
func NewPresenceBroadcaster(registry *Registry, m *metrics.Realtime, logger *slog.Logger) *PresenceBroadcaster {
	return &PresenceBroadcaster{
		registry: registry,
		metrics:  m,
		logger:   logger.With("component", "presence"),
	}
}

// Broadcast sends the current online set to all connections, anonymous ones
// included. Full buffers drop the update; the next change sends a fresh one.
func (p *PresenceBroadcaster) Broadcast() {
	online := p.registry.Online()
	event := domain.NewPresenceEvent(online)
	conns := p.registry.Connections()

	dropped := 0
	for _, conn := range conns {
		if !conn.Enqueue(event) {
			dropped++
			p.metrics.Dropped(string(domain.EventPresenceUpdated), metrics.ReasonBufferFull)
		}
	}

	p.metrics.PresenceBroadcast()
	p.metrics.SetConnections(len(conns), len(online))

	p.logger.Debug("presence broadcast",
		"online_users", len(online),
		"connections", len(conns),
		"dropped", dropped,
	)
}
