package websocket

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
)

// Conn is a live connection as seen by the registry, the presence broadcaster
// and the router. Enqueue must never block.
type Conn interface {
	Session() domain.Session
	Enqueue(event domain.Event) bool
	CloseSend()
}

// Registry maps each identity to its current live connection.
//
// A user who connects again takes over routing from the earlier connection
// (last-connect-wins). Every identified user keeps an ordered list of its open
// connections so that a disconnect only ever removes its own entry: a stale
// disconnect cannot evict a newer connection, and closing the newest one falls
// back to the previous connection that is still open.
type Registry struct {
	mu sync.RWMutex

	// conns holds every open connection, anonymous ones included.
	conns map[string]Conn

	// byUser holds open connection ids per identity, oldest first.
	byUser map[uuid.UUID][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]Conn),
		byUser: make(map[uuid.UUID][]string),
	}
}

// Connect records conn as open and, for identified sessions, makes it the
// connection that Resolve returns for its user.
func (r *Registry) Connect(conn Conn) {
	session := conn.Session()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[session.ConnectionID] = conn
	if session.Anonymous() {
		return
	}

	ids := removeID(r.byUser[session.UserID], session.ConnectionID)
	r.byUser[session.UserID] = append(ids, session.ConnectionID)
}

// Disconnect forgets conn. It reports whether the user's resolved connection
// changed, which is false for anonymous and stale connections.
func (r *Registry) Disconnect(conn Conn) bool {
	session := conn.Session()

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, session.ConnectionID)
	if session.Anonymous() {
		return false
	}

	ids, ok := r.byUser[session.UserID]
	if !ok {
		return false
	}

	current := ids[len(ids)-1] == session.ConnectionID
	ids = removeID(ids, session.ConnectionID)
	if len(ids) == 0 {
		delete(r.byUser, session.UserID)
	} else {
		r.byUser[session.UserID] = ids
	}
	return current
}

// Resolve returns the connection events for userID go to.
func (r *Registry) Resolve(userID uuid.UUID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.byUser[userID]
	if !ok {
		return nil, false
	}
	conn, ok := r.conns[ids[len(ids)-1]]
	return conn, ok
}

// ResolveID is Resolve reduced to the connection id.
func (r *Registry) ResolveID(userID uuid.UUID) (string, bool) {
	conn, ok := r.Resolve(userID)
	if !ok {
		return "", false
	}
	return conn.Session().ConnectionID, true
}

// Online returns the identities with at least one open connection, sorted.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	online := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		online = append(online, userID.String())
	}
	sort.Strings(online)
	return online
}

// Connections returns a snapshot of every open connection.
func (r *Registry) Connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

// Counts returns the number of open connections and online identities.
func (r *Registry) Counts() (open, online int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns), len(r.byUser)
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
