package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/social-realtime/internal/core/domain"
)

const waitFor = 3 * time.Second
const tick = 5 * time.Millisecond

// fakeServer accepts websocket connections carrying token=good and hands
// them to the test.
type fakeServer struct {
	*httptest.Server
	conns chan *websocket.Conn

	mu     sync.Mutex
	tokens []string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	s := &fakeServer{conns: make(chan *websocket.Conn, 8)}
	upgrader := websocket.Upgrader{}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		s.mu.Lock()
		s.tokens = append(s.tokens, token)
		s.mu.Unlock()

		if token != "good" {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.conns <- ws
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func (s *fakeServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case ws := <-s.conns:
		t.Cleanup(func() { _ = ws.Close() })
		return ws
	case <-time.After(waitFor):
		t.Fatal("no connection accepted")
		return nil
	}
}

func (s *fakeServer) dialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func newTestClient(t *testing.T, s *fakeServer) *Client {
	t.Helper()
	c := NewClient(Config{
		URL:                s.url(),
		ReconnectBaseDelay: 10 * time.Millisecond,
		ReconnectMaxDelay:  40 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func push(t *testing.T, ws *websocket.Conn, eventType domain.EventType, payload any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(map[string]any{"type": eventType, "payload": payload}))
}

func TestClient_ConnectWithoutIdentity(t *testing.T) {
	s := newFakeServer(t)
	c := newTestClient(t, s)

	err := c.Connect(context.Background(), Identity{UserID: "u1"})

	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Equal(t, StateDisconnected, c.State())
	assert.Zero(t, s.dialCount())
}

func TestClient_ConnectRejectedToken(t *testing.T) {
	s := newFakeServer(t)
	c := newTestClient(t, s)

	err := c.Connect(context.Background(), Identity{Token: "bad"})

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClient_DispatchesInOrderToSubscriptions(t *testing.T) {
	s := newFakeServer(t)
	c := newTestClient(t, s)

	var mu sync.Mutex
	var got []string
	c.OnConnect(func(conn *Conn) {
		conn.On(domain.EventPresenceUpdated, func(raw json.RawMessage) {
			var p domain.PresencePayload
			require.NoError(t, json.Unmarshal(raw, &p))
			mu.Lock()
			got = append(got, p.OnlineUserIDs...)
			mu.Unlock()
		})
	})

	require.NoError(t, c.Connect(context.Background(), Identity{Token: "good"}))
	assert.Equal(t, StateConnected, c.State())
	ws := s.accept(t)

	for _, id := range []string{"a", "b", "c"} {
		push(t, ws, domain.EventPresenceUpdated, domain.PresencePayload{OnlineUserIDs: []string{id}})
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, waitFor, tick)
	mu.Lock()
	assert.Equal(t, []string{"a", "b", "c"}, got)
	mu.Unlock()
}

func TestClient_UnsubscribeStopsDelivery(t *testing.T) {
	s := newFakeServer(t)
	c := newTestClient(t, s)

	require.NoError(t, c.Connect(context.Background(), Identity{Token: "good"}))
	ws := s.accept(t)
	conn := c.Conn()
	require.NotNil(t, conn)

	var mu sync.Mutex
	var first, second int
	sub := conn.On(domain.EventPong, func(json.RawMessage) {
		mu.Lock()
		first++
		mu.Unlock()
	})
	conn.On(domain.EventPong, func(json.RawMessage) {
		mu.Lock()
		second++
		mu.Unlock()
	})

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.False(t, sub.Active())

	push(t, ws, domain.EventPong, nil)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return second == 1
	}, waitFor, tick)
	mu.Lock()
	assert.Zero(t, first)
	mu.Unlock()
}

func TestClient_ReconnectRebindsAndReleasesOldSubscriptions(t *testing.T) {
	s := newFakeServer(t)
	c := newTestClient(t, s)

	var mu sync.Mutex
	var conns []*Conn
	var subs []*Subscription
	disconnects := 0
	c.OnConnect(func(conn *Conn) {
		mu.Lock()
		defer mu.Unlock()
		conns = append(conns, conn)
		subs = append(subs, conn.On(domain.EventPong, func(json.RawMessage) {}))
	})
	c.OnDisconnect(func() {
		mu.Lock()
		disconnects++
		mu.Unlock()
	})

	require.NoError(t, c.Connect(context.Background(), Identity{Token: "good"}))
	first := s.accept(t)

	// Server drops the connection; the client dials again on its own.
	require.NoError(t, first.Close())
	s.accept(t)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(conns) == 2 && c.State() == StateConnected
	}, waitFor, tick)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, disconnects)
	assert.True(t, conns[0].Closed())
	assert.False(t, subs[0].Active())
	assert.True(t, subs[1].Active())
	assert.Greater(t, conns[1].Generation(), conns[0].Generation())

	late := conns[0].On(domain.EventPong, func(json.RawMessage) {})
	assert.False(t, late.Active())
}

func TestClient_CloseIsLogout(t *testing.T) {
	s := newFakeServer(t)
	c := newTestClient(t, s)

	require.NoError(t, c.Connect(context.Background(), Identity{Token: "good"}))
	s.accept(t)
	conn := c.Conn()

	require.NoError(t, c.Close())

	assert.Equal(t, StateDisconnected, c.State())
	assert.Nil(t, c.Conn())
	assert.True(t, conn.Closed())

	dials := s.dialCount()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, dials, s.dialCount(), "no reconnect after Close")

	require.NoError(t, c.Connect(context.Background(), Identity{Token: "good"}))
	s.accept(t)
}

func TestClient_ServeReturnsOnCancelWithHealthyConnection(t *testing.T) {
	s := newFakeServer(t)
	c := newTestClient(t, s)

	ws, _, err := c.dialer.DialContext(context.Background(), s.url()+"?token=good", nil)
	require.NoError(t, err)
	s.accept(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	returned := make(chan struct{})
	go func() {
		c.serve(ctx, newConn(ws, 1))
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(waitFor):
		t.Fatal("serve kept reading after cancellation")
	}
}

func TestClient_CloseWhileReconnectBinderBlocks(t *testing.T) {
	s := newFakeServer(t)
	c := newTestClient(t, s)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	c.OnConnect(func(conn *Conn) {
		if conn.Generation() < 2 {
			return
		}
		once.Do(func() { close(entered) })
		<-release
	})

	require.NoError(t, c.Connect(context.Background(), Identity{Token: "good"}))
	first := s.accept(t)
	require.NoError(t, first.Close())
	s.accept(t)

	select {
	case <-entered:
	case <-time.After(waitFor):
		t.Fatal("reconnect binder never ran")
	}

	closed := make(chan error, 1)
	go func() { closed <- c.Close() }()
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Close did not return")
	}
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClient_ConnectTwice(t *testing.T) {
	s := newFakeServer(t)
	c := newTestClient(t, s)

	require.NoError(t, c.Connect(context.Background(), Identity{Token: "good"}))
	s.accept(t)

	assert.ErrorIs(t, c.Connect(context.Background(), Identity{Token: "good"}), ErrAlreadyConnected)
}

func TestClient_Backoff(t *testing.T) {
	c := NewClient(Config{ReconnectBaseDelay: 100 * time.Millisecond, ReconnectMaxDelay: time.Second}, nil)

	tests := []struct {
		attempt int
		min     time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{10, time.Second},
	}
	for _, tt := range tests {
		d := c.backoff(tt.attempt)
		assert.GreaterOrEqual(t, d, tt.min, "attempt %d", tt.attempt)
		assert.LessOrEqual(t, d, tt.min+tt.min/2, "attempt %d", tt.attempt)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
}
