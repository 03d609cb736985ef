package domain

import (
	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
)

// EventType defines the type of real-time event.
type EventType string

const (
	EventLikesChanged        EventType = "LIKES_CHANGED"
	EventCommentsChanged     EventType = "COMMENTS_CHANGED"
	EventNotificationCreated EventType = "NOTIFICATION_CREATED"
	EventMessageCreated      EventType = "MESSAGE_CREATED"
	EventPresenceUpdated     EventType = "PRESENCE_UPDATED"
	EventPong                EventType = "PONG"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Validate rejects events that name no subject or carry the wrong payload.
// It runs before anything is queued, so a bad event is never half-delivered.
func (e Event) Validate() error {
	switch e.Type {
	case EventLikesChanged:
		p, ok := payloadAs[LikesChangedPayload](e.Payload)
		if !ok {
			return apperrors.MalformedEvent("%s requires a likes payload", e.Type)
		}
		return validateSubject(e.Type, p.SubjectKind, p.SubjectID)

	case EventCommentsChanged:
		p, ok := payloadAs[CommentsChangedPayload](e.Payload)
		if !ok {
			return apperrors.MalformedEvent("%s requires a comments payload", e.Type)
		}
		return validateSubject(e.Type, p.SubjectKind, p.SubjectID)

	case EventNotificationCreated:
		p, ok := payloadAs[NotificationPayload](e.Payload)
		if !ok || p.Notification.ID == "" {
			return apperrors.MalformedEvent("%s requires a notification with an id", e.Type)
		}
		return nil

	case EventMessageCreated:
		p, ok := payloadAs[MessagePayload](e.Payload)
		if !ok || p.Message.ID == "" {
			return apperrors.MalformedEvent("%s requires a message with an id", e.Type)
		}
		return nil

	case EventPresenceUpdated:
		if _, ok := payloadAs[PresencePayload](e.Payload); !ok {
			return apperrors.MalformedEvent("%s requires a presence payload", e.Type)
		}
		return nil

	case EventPong:
		return nil

	default:
		return apperrors.MalformedEvent("unknown event type %q", e.Type)
	}
}

func validateSubject(t EventType, kind ContentKind, id string) error {
	if id == "" {
		return apperrors.MalformedEvent("%s is missing a subject id", t)
	}
	if !kind.IsValid() {
		return apperrors.MalformedEvent("%s has unknown subject kind %q", t, kind)
	}
	return nil
}

// payloadAs accepts both T and *T.
func payloadAs[T any](payload any) (T, bool) {
	switch p := payload.(type) {
	case T:
		return p, true
	case *T:
		if p != nil {
			return *p, true
		}
	}
	var zero T
	return zero, false
}

// NewLikesChangedEvent carries content's full like list.
func NewLikesChangedEvent(content *Content) Event {
	return Event{
		Type: EventLikesChanged,
		Payload: LikesChangedPayload{
			SubjectKind: content.Kind,
			SubjectID:   idString(content.ID),
			Likes:       LikeIDs(content.Likes),
		},
	}
}

// NewCommentsChangedEvent carries content's full comment list.
func NewCommentsChangedEvent(content *Content) Event {
	return Event{
		Type: EventCommentsChanged,
		Payload: CommentsChangedPayload{
			SubjectKind: content.Kind,
			SubjectID:   idString(content.ID),
			Comments:    NewCommentSnapshots(content.Comments),
		},
	}
}

func NewNotificationEvent(n *Notification) Event {
	return Event{
		Type:    EventNotificationCreated,
		Payload: NotificationPayload{Notification: NewNotificationSnapshot(n)},
	}
}

func NewMessageEvent(m *Message) Event {
	return Event{
		Type:    EventMessageCreated,
		Payload: MessagePayload{Message: NewMessageSnapshot(m)},
	}
}

// NewPresenceEvent copies online so later registry changes cannot leak in.
func NewPresenceEvent(online []string) Event {
	ids := make([]string, len(online))
	copy(ids, online)
	return Event{
		Type:    EventPresenceUpdated,
		Payload: PresencePayload{OnlineUserIDs: ids},
	}
}
