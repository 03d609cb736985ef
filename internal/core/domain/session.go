package domain

import "github.com/google/uuid"

// Session binds an authenticated identity to one live connection. A zero
// UserID marks an anonymous connection, which receives broadcasts but never
// appears in presence.
type Session struct {
	UserID       uuid.UUID
	ConnectionID string
}

// Anonymous reports whether the session carries no identity.
func (s Session) Anonymous() bool {
	return s.UserID == uuid.Nil
}
