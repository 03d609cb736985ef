package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
)

const MaxMessageTextLength = 4000

// Message is a direct message between two users. At least one of Text or
// ImageURL is set.
type Message struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Text       *string
	ImageURL   *string
	CreatedAt  time.Time
}

// MessageParams holds the input for NewMessage.
type MessageParams struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Text       string
	ImageURL   string
}

// NewMessage validates params and builds a message.
func NewMessage(params MessageParams) (*Message, error) {
	if params.SenderID == params.ReceiverID {
		return nil, apperrors.ErrCannotMessageSelf
	}

	text := strings.TrimSpace(params.Text)
	image := strings.TrimSpace(params.ImageURL)
	if text == "" && image == "" {
		return nil, apperrors.ErrMessageEmpty
	}
	if len(text) > MaxMessageTextLength {
		return nil, apperrors.ErrMessageTextTooLong
	}

	msg := &Message{
		ID:         uuid.New(),
		SenderID:   params.SenderID,
		ReceiverID: params.ReceiverID,
		CreatedAt:  time.Now().UTC(),
	}
	if text != "" {
		msg.Text = &text
	}
	if image != "" {
		msg.ImageURL = &image
	}
	return msg, nil
}

// Involves reports whether userID is the sender or the receiver.
func (m *Message) Involves(userID uuid.UUID) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}
