package live

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/lorrc/social-realtime/internal/core/domain"
)

// Frame is one server event as read off the wire.
type Frame struct {
	Type    domain.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

// Handler receives the raw payload of a frame.
type Handler func(payload json.RawMessage)

// Conn is a single established connection. Subscriptions belong to the
// connection they were made on and are released when it closes.
type Conn struct {
	ws         *websocket.Conn
	generation uint64

	mu       sync.Mutex
	closed   bool
	handlers map[domain.EventType][]*Subscription
}

func newConn(ws *websocket.Conn, generation uint64) *Conn {
	return &Conn{
		ws:         ws,
		generation: generation,
		handlers:   make(map[domain.EventType][]*Subscription),
	}
}

// Generation increases by one for every connection the client establishes.
func (c *Conn) Generation() uint64 {
	return c.generation
}

// On attaches handler to frames of eventType. Subscribing on a closed
// connection returns an already stale subscription.
func (c *Conn) On(eventType domain.EventType, handler Handler) *Subscription {
	sub := &Subscription{conn: c, eventType: eventType, handler: handler}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		sub.stale = true
		return sub
	}
	c.handlers[eventType] = append(c.handlers[eventType], sub)
	return sub
}

// Closed reports whether the connection has been released.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// dispatch runs every live handler for frame in subscription order. Each
// handler is re-checked right before it runs so one released mid-dispatch
// does not fire.
func (c *Conn) dispatch(frame Frame) {
	c.mu.Lock()
	subs := append([]*Subscription(nil), c.handlers[frame.Type]...)
	c.mu.Unlock()

	for _, sub := range subs {
		if !sub.Active() {
			continue
		}
		sub.handler(frame.Payload)
	}
}

// release marks the connection closed and every subscription stale.
func (c *Conn) release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for _, subs := range c.handlers {
		for _, sub := range subs {
			sub.stale = true
		}
	}
	c.handlers = nil
}

func (c *Conn) remove(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub.stale = true
	subs := c.handlers[sub.eventType]
	for i, s := range subs {
		if s == sub {
			c.handlers[sub.eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Subscription is the handle returned by Conn.On.
type Subscription struct {
	conn      *Conn
	eventType domain.EventType
	handler   Handler
	stale     bool
}

// Unsubscribe detaches the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.conn.remove(s)
}

// Active reports whether the handler can still fire.
func (s *Subscription) Active() bool {
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()
	return !s.stale && !s.conn.closed
}
