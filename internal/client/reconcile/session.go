package reconcile

import (
	"encoding/json"
	"log/slog"

	"github.com/lorrc/social-realtime/internal/client/live"
	"github.com/lorrc/social-realtime/internal/core/domain"
)

// Session keeps a Store in step with a live.Client. Handlers are attached on
// every connection, so a reconnect needs no extra wiring.
type Session struct {
	client   *live.Client
	store    *Store
	logger   *slog.Logger
	onChange func(domain.EventType, any)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithOnChange calls fn with the decoded payload after each event has been
// applied to the store.
func WithOnChange(fn func(domain.EventType, any)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

// NewSession binds store to client. Call it before client.Connect.
func NewSession(client *live.Client, store *Store, logger *slog.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		client: client,
		store:  store,
		logger: logger.With("component", "reconcile"),
	}
	for _, opt := range opts {
		opt(s)
	}

	client.OnConnect(s.bind)
	client.OnDisconnect(store.InvalidatePresence)
	return s
}

// Store returns the mirrored state.
func (s *Session) Store() *Store {
	return s.store
}

func (s *Session) bind(conn *live.Conn) {
	conn.On(domain.EventLikesChanged, handle(s, domain.EventLikesChanged, func(p domain.LikesChangedPayload) {
		s.store.ApplyLikes(p)
	}))
	conn.On(domain.EventCommentsChanged, handle(s, domain.EventCommentsChanged, func(p domain.CommentsChangedPayload) {
		s.store.ApplyComments(p)
	}))
	conn.On(domain.EventNotificationCreated, handle(s, domain.EventNotificationCreated, func(p domain.NotificationPayload) {
		s.store.PrependNotification(p.Notification)
	}))
	conn.On(domain.EventMessageCreated, handle(s, domain.EventMessageCreated, func(p domain.MessagePayload) {
		s.store.AppendMessage(p.Message)
	}))
	conn.On(domain.EventPresenceUpdated, handle(s, domain.EventPresenceUpdated, func(p domain.PresencePayload) {
		s.store.ReplaceOnline(p.OnlineUserIDs)
	}))
}

// handle decodes the payload into T before applying it. Undecodable frames
// are logged and skipped.
func handle[T any](s *Session, eventType domain.EventType, apply func(T)) live.Handler {
	return func(raw json.RawMessage) {
		var payload T
		if err := json.Unmarshal(raw, &payload); err != nil {
			s.logger.Warn("discarding undecodable event", "event_type", eventType, "error", err)
			return
		}
		apply(payload)
		if s.onChange != nil {
			s.onChange(eventType, payload)
		}
	}
}
