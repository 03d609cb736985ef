// Package reconcile keeps a client-side mirror of REST data current by
// applying the server's live events to it.
package reconcile

import (
	"slices"
	"sync"

	"github.com/lorrc/social-realtime/internal/core/domain"
)

// Store holds the mirrored collections. Every getter returns a copy.
type Store struct {
	mu sync.RWMutex

	posts         []domain.ContentSnapshot
	loops         []domain.ContentSnapshot
	notifications []domain.NotificationSnapshot

	partnerID string
	messages  []domain.MessageSnapshot

	online        []string
	presenceKnown bool
}

// NewStore returns an empty store with presence unknown.
func NewStore() *Store {
	return &Store{}
}

// SetPosts replaces the mirrored posts with a REST snapshot.
func (s *Store) SetPosts(posts []domain.ContentSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = cloneContent(posts)
}

// SetLoops replaces the mirrored loops with a REST snapshot.
func (s *Store) SetLoops(loops []domain.ContentSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loops = cloneContent(loops)
}

// Posts returns a copy of the mirrored posts.
func (s *Store) Posts() []domain.ContentSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneContent(s.posts)
}

// Loops returns a copy of the mirrored loops.
func (s *Store) Loops() []domain.ContentSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneContent(s.loops)
}

// SetNotifications replaces the list; it is expected most-recent-first.
func (s *Store) SetNotifications(list []domain.NotificationSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = slices.Clone(list)
}

// Notifications returns a copy of the mirrored notifications.
func (s *Store) Notifications() []domain.NotificationSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notifications)
}

// OpenConversation makes partnerID the active conversation with history as
// its messages, oldest first. An empty partnerID closes it.
func (s *Store) OpenConversation(partnerID string, history []domain.MessageSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partnerID = partnerID
	if partnerID == "" {
		s.messages = nil
		return
	}
	s.messages = slices.Clone(history)
}

// Conversation returns the open partner and its messages.
func (s *Store) Conversation() (string, []domain.MessageSnapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partnerID, slices.Clone(s.messages)
}

// Online returns the last known online set and whether it is current.
func (s *Store) Online() ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.online), s.presenceKnown
}

// ApplyLikes replaces the like list of the matching post or loop. Unknown
// subjects are ignored.
func (s *Store) ApplyLikes(p domain.LikesChangedPayload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(p.SubjectKind, p.SubjectID)
	if item == nil {
		return false
	}
	item.Likes = nonNil(slices.Clone(p.Likes))
	return true
}

// ApplyComments replaces the comment list of the matching post or loop.
func (s *Store) ApplyComments(p domain.CommentsChangedPayload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(p.SubjectKind, p.SubjectID)
	if item == nil {
		return false
	}
	item.Comments = nonNil(slices.Clone(p.Comments))
	return true
}

// PrependNotification puts n at the head of the list. A notification that is
// already present is replaced where it is, so redelivery does not duplicate.
func (s *Store) PrependNotification(n domain.NotificationSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == n.ID {
			s.notifications[i] = n
			return
		}
	}
	s.notifications = append([]domain.NotificationSnapshot{n}, s.notifications...)
}

// AppendMessage adds m to the open conversation when it belongs to it.
func (s *Store) AppendMessage(m domain.MessageSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.partnerID == "" || (m.SenderID != s.partnerID && m.ReceiverID != s.partnerID) {
		return false
	}
	for _, existing := range s.messages {
		if existing.ID == m.ID {
			return false
		}
	}
	s.messages = append(s.messages, m)
	return true
}

// ReplaceOnline swaps in a full presence set.
func (s *Store) ReplaceOnline(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = nonNil(slices.Clone(ids))
	s.presenceKnown = true
}

// InvalidatePresence forgets the online set. Other cached data is kept.
func (s *Store) InvalidatePresence() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = nil
	s.presenceKnown = false
}

func (s *Store) find(kind domain.ContentKind, id string) *domain.ContentSnapshot {
	var list []domain.ContentSnapshot
	switch kind {
	case domain.ContentPost:
		list = s.posts
	case domain.ContentLoop:
		list = s.loops
	default:
		return nil
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func cloneContent(in []domain.ContentSnapshot) []domain.ContentSnapshot {
	if in == nil {
		return nil
	}
	out := make([]domain.ContentSnapshot, len(in))
	for i, c := range in {
		c.Likes = slices.Clone(c.Likes)
		c.Comments = slices.Clone(c.Comments)
		out[i] = c
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
