// Package live maintains a reconnecting websocket session against the
// social-realtime server and fans incoming frames out to per-connection
// subscriptions.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrNoIdentity is returned by Connect when no token is available.
	ErrNoIdentity = errors.New("live: no identity to connect with")
	// ErrAlreadyConnected is returned by Connect while a session is running.
	ErrAlreadyConnected = errors.New("live: already connected")
	// ErrUnauthorized means the server rejected the token; retrying is pointless.
	ErrUnauthorized = errors.New("live: token rejected")
)

// State is the lifecycle of a Client.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Identity is who the client connects as.
type Identity struct {
	UserID string
	Token  string
}

// Empty reports whether there is nothing to authenticate with.
func (i Identity) Empty() bool {
	return i.Token == ""
}

// Config holds client configuration.
type Config struct {
	// URL of the websocket endpoint, e.g. ws://localhost:8080/api/v1/ws
	URL                string
	HandshakeTimeout   time.Duration
	HeartbeatInterval  time.Duration
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
}

// DefaultConfig returns a development configuration.
func DefaultConfig() Config {
	return Config{
		URL:                "ws://localhost:8080/api/v1/ws",
		HandshakeTimeout:   15 * time.Second,
		HeartbeatInterval:  30 * time.Second,
		ReconnectBaseDelay: 500 * time.Millisecond,
		ReconnectMaxDelay:  30 * time.Second,
	}
}

// Client owns at most one Conn at a time and replaces it after a drop until
// Close is called.
type Client struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *slog.Logger

	mu           sync.Mutex
	state        State
	identity     Identity
	conn         *Conn
	generation   uint64
	onConnect    []func(*Conn)
	onDisconnect []func()
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewClient creates a disconnected client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	d := DefaultConfig()
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = d.HandshakeTimeout
	}
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = d.ReconnectBaseDelay
	}
	if cfg.ReconnectMaxDelay < cfg.ReconnectBaseDelay {
		cfg.ReconnectMaxDelay = cfg.ReconnectBaseDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		logger: logger.With("component", "live_client"),
	}
}

// OnConnect registers fn to run on every established connection, before the
// first frame of that connection is read.
func (c *Client) OnConnect(fn func(*Conn)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, fn)
}

// OnDisconnect registers fn to run every time a connection is lost.
func (c *Client) OnDisconnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = append(c.onDisconnect, fn)
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Conn returns the current connection, or nil while not connected.
func (c *Client) Conn() *Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Connect dials the server as id and keeps the session alive in the
// background. ctx only bounds the first dial; reconnection runs until Close.
func (c *Client) Connect(ctx context.Context, id Identity) error {
	if id.Empty() {
		return ErrNoIdentity
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.identity = id
	c.mu.Unlock()

	ws, err := c.dial(ctx, id)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	conn := c.attach(ws)
	go c.run(runCtx, conn, done)
	return nil
}

// Close logs out: the connection is closed and never re-established.
func (c *Client) Close() error {
	c.mu.Lock()
	cancel, done, conn := c.cancel, c.done, c.conn
	c.cancel = nil
	c.identity = Identity{}
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	if conn != nil {
		_ = conn.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.ws.Close()
	}
	<-done

	c.setState(StateDisconnected)
	return nil
}

func (c *Client) run(ctx context.Context, conn *Conn, done chan struct{}) {
	defer close(done)

	for {
		c.serve(ctx, conn)
		c.detach(conn)

		if ctx.Err() != nil {
			return
		}

		next, err := c.reconnect(ctx)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				c.logger.Warn("reconnect rejected, giving up", "error", err)
			}
			c.mu.Lock()
			c.cancel = nil
			c.mu.Unlock()
			c.setState(StateDisconnected)
			return
		}
		conn = next
	}
}

// serve reads frames until the connection fails or ctx is cancelled.
// Handlers run on this goroutine so per-connection order is preserved.
func (c *Client) serve(ctx context.Context, conn *Conn) {
	stop := make(chan struct{})
	defer close(stop)

	// Close may run before conn is attached and never see it.
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.ws.Close()
		case <-stop:
		}
	}()

	if c.cfg.HeartbeatInterval > 0 {
		go c.heartbeat(conn, stop)
	}

	for {
		var frame Frame
		if err := conn.ws.ReadJSON(&frame); err != nil {
			if ctx.Err() == nil {
				c.logger.Debug("connection lost", "generation", conn.generation, "error", err)
			}
			return
		}
		conn.dispatch(frame)
	}
}

func (c *Client) heartbeat(conn *Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.ws.WriteJSON(map[string]string{"type": "PING"}); err != nil {
				c.logger.Debug("failed to send heartbeat", "error", err)
				return
			}
		}
	}
}

func (c *Client) reconnect(ctx context.Context) (*Conn, error) {
	for attempt := 0; ; attempt++ {
		wait := c.backoff(attempt)
		c.logger.Debug("reconnecting", "attempt", attempt+1, "wait_ms", wait.Milliseconds())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}

		c.mu.Lock()
		id := c.identity
		c.mu.Unlock()
		if id.Empty() {
			return nil, ErrNoIdentity
		}

		ws, err := c.dial(ctx, id)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) || ctx.Err() != nil {
				return nil, err
			}
			continue
		}
		return c.attach(ws), nil
	}
}

// backoff doubles from the base delay up to the max, plus up to half of
// that again as jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.cfg.ReconnectBaseDelay
	for i := 0; i < attempt && delay < c.cfg.ReconnectMaxDelay; i++ {
		delay *= 2
	}
	if delay > c.cfg.ReconnectMaxDelay {
		delay = c.cfg.ReconnectMaxDelay
	}
	return delay + time.Duration(rand.Int63n(int64(delay)/2+1))
}

func (c *Client) dial(ctx context.Context, id Identity) (*websocket.Conn, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("live: parse url: %w", err)
	}
	q := u.Query()
	q.Set("token", id.Token)
	u.RawQuery = q.Encode()

	ws, resp, err := c.dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("live: dial: %w", err)
	}
	return ws, nil
}

// attach installs ws as the current connection and runs the connect
// binders before any frame is read from it.
func (c *Client) attach(ws *websocket.Conn) *Conn {
	c.mu.Lock()
	c.generation++
	conn := newConn(ws, c.generation)
	c.conn = conn
	c.state = StateConnected
	binders := slices.Clone(c.onConnect)
	c.mu.Unlock()

	c.logger.Info("connected", "generation", conn.generation)

	for _, bind := range binders {
		bind(conn)
	}
	return conn
}

func (c *Client) detach(conn *Conn) {
	conn.release()
	_ = conn.ws.Close()

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	if c.cancel != nil {
		c.state = StateConnecting
	}
	listeners := slices.Clone(c.onDisconnect)
	c.mu.Unlock()

	c.logger.Info("disconnected", "generation", conn.generation)

	for _, fn := range listeners {
		fn()
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}
