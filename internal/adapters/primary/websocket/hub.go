package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/core/ports"
	"github.com/lorrc/social-realtime/internal/infrastructure/metrics"
)

// Config tunes the hub and the connections it serves.
type Config struct {
	// SendBufferSize is the per-connection outbound queue length.
	SendBufferSize int
	// DispatchBufferSize is the hub-wide queue of routed events.
	DispatchBufferSize int
	PingPeriod         time.Duration
	PongWait           time.Duration
	WriteWait          time.Duration
	MaxMessageSize     int64
}

// DefaultConfig returns the defaults used when a field is left zero.
func DefaultConfig() Config {
	return Config{
		SendBufferSize:     256,
		DispatchBufferSize: 1024,
		PingPeriod:         54 * time.Second,
		PongWait:           60 * time.Second,
		WriteWait:          10 * time.Second,
		MaxMessageSize:     1024,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = d.SendBufferSize
	}
	if c.DispatchBufferSize <= 0 {
		c.DispatchBufferSize = d.DispatchBufferSize
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		c.PingPeriod = (c.PongWait * 9) / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	return c
}

// delivery is one Route call waiting for the hub loop.
type delivery struct {
	event      domain.Event
	recipients []uuid.UUID
}

// Hub owns the registry and serialises every connect, disconnect and
// dispatch through a single loop, so all deliveries to one connection are
// queued in the order Route was called.
type Hub struct {
	registry *Registry
	presence *PresenceBroadcaster
	metrics  *metrics.Realtime
	cfg      Config

	register   chan Conn
	unregister chan Conn
	dispatch   chan delivery

	// done is closed when Run returns.
	done chan struct{}

	logger *slog.Logger
}

// Ensure Hub implements the core ports.
var (
	_ ports.EventRouter    = (*Hub)(nil)
	_ ports.PresenceReader = (*Hub)(nil)
)

// NewHub creates a new WebSocket hub
func NewHub(registry *Registry, m *metrics.Realtime, cfg Config, logger *slog.Logger) *Hub {
	cfg = cfg.withDefaults()

	return &Hub{
		registry:   registry,
		presence:   NewPresenceBroadcaster(registry, m, logger),
		metrics:    m,
		cfg:        cfg,
		register:   make(chan Conn),
		unregister: make(chan Conn),
		dispatch:   make(chan delivery, cfg.DispatchBufferSize),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Config returns the effective configuration.
func (h *Hub) Config() Config {
	return h.cfg
}

// Done is closed once the hub loop has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run starts the hub's event loop and blocks until ctx is cancelled. On exit
// every open connection is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case conn := <-h.register:
			h.connect(conn)

		case conn := <-h.unregister:
			h.disconnect(conn)

		case d := <-h.dispatch:
			h.deliver(d)
		}
	}
}

// Register hands a new connection to the hub loop. It returns false once the
// hub has stopped.
func (h *Hub) Register(conn Conn) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister hands a closed connection to the hub loop.
func (h *Hub) Unregister(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Route validates event and queues it for recipients. It never waits on
// delivery: a full dispatch queue drops the event. Only validation failures
// are returned, and in that case nothing is queued.
func (h *Hub) Route(event domain.Event, recipients ...uuid.UUID) error {
	if err := event.Validate(); err != nil {
		h.metrics.Dropped(string(event.Type), metrics.ReasonMalformed)
		return err
	}

	targets := uniqueRecipients(recipients)
	if len(targets) == 0 {
		return nil
	}

	select {
	case h.dispatch <- delivery{event: event, recipients: targets}:
	default:
		h.logger.Warn("dispatch queue full, dropping event",
			"event_type", event.Type,
			"recipients", len(targets),
		)
		h.metrics.Dropped(string(event.Type), metrics.ReasonQueueFull)
	}
	return nil
}

// Online returns the identities currently holding a live connection.
func (h *Hub) Online() []string {
	return h.registry.Online()
}

// Counts returns the number of open connections and online identities.
func (h *Hub) Counts() (open, online int) {
	return h.registry.Counts()
}

func (h *Hub) connect(conn Conn) {
	h.registry.Connect(conn)
	session := conn.Session()

	h.logger.Info("client registered",
		"user_id", session.UserID,
		"connection_id", session.ConnectionID,
		"anonymous", session.Anonymous(),
	)

	h.presence.Broadcast()
}

func (h *Hub) disconnect(conn Conn) {
	session := conn.Session()
	current := h.registry.Disconnect(conn)
	conn.CloseSend()

	if !session.Anonymous() && !current {
		h.metrics.StaleDisconnect()
	}

	h.logger.Info("client unregistered",
		"user_id", session.UserID,
		"connection_id", session.ConnectionID,
		"was_current", current,
	)

	h.presence.Broadcast()
}

// deliver resolves each recipient and queues the event on its connection.
// Misses and full buffers are silent drops.
func (h *Hub) deliver(d delivery) {
	eventType := string(d.event.Type)

	for _, userID := range d.recipients {
		conn, ok := h.registry.Resolve(userID)
		if !ok {
			h.metrics.Dropped(eventType, metrics.ReasonOffline)
			h.logger.Debug("recipient offline, dropping event",
				"event_type", eventType,
				"user_id", userID,
			)
			continue
		}

		if !conn.Enqueue(d.event) {
			h.metrics.Dropped(eventType, metrics.ReasonBufferFull)
			h.logger.Warn("client send buffer full, dropping event",
				"event_type", eventType,
				"user_id", userID,
				"connection_id", conn.Session().ConnectionID,
			)
			continue
		}

		h.metrics.Routed(eventType)
	}
}

func (h *Hub) shutdown() {
	conns := h.registry.Connections()
	for _, conn := range conns {
		h.registry.Disconnect(conn)
		conn.CloseSend()
	}
	h.metrics.SetConnections(0, 0)
	h.logger.Info("hub stopped", "closed_connections", len(conns))
}

func uniqueRecipients(recipients []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(recipients))
	seen := make(map[uuid.UUID]struct{}, len(recipients))
	for _, id := range recipients {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
