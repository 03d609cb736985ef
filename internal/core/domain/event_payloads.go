package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommentSnapshot matches the API response shape for comments.
type CommentSnapshot struct {
	ID        string `json:"id"`
	ContentID string `json:"contentId"`
	AuthorID  string `json:"authorId"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// ContentSnapshot matches the API response shape for posts and loops.
type ContentSnapshot struct {
	ID        string            `json:"id"`
	Kind      ContentKind       `json:"kind"`
	AuthorID  string            `json:"authorId"`
	Caption   string            `json:"caption"`
	MediaURL  string            `json:"mediaUrl"`
	Likes     []string          `json:"likes"`
	Comments  []CommentSnapshot `json:"comments"`
	CreatedAt string            `json:"createdAt"`
}

// NotificationSnapshot matches the API response shape for notifications.
type NotificationSnapshot struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	SenderID    string      `json:"senderId"`
	RecipientID string      `json:"recipientId"`
	ContentID   *string     `json:"contentId"`
	ContentKind ContentKind `json:"contentKind,omitempty"`
	Message     string      `json:"message"`
	IsRead      bool        `json:"isRead"`
	CreatedAt   string      `json:"createdAt"`
}

// MessageSnapshot matches the API response shape for direct messages.
type MessageSnapshot struct {
	ID         string  `json:"id"`
	SenderID   string  `json:"senderId"`
	ReceiverID string  `json:"receiverId"`
	Text       *string `json:"text"`
	ImageURL   *string `json:"imageUrl"`
	CreatedAt  string  `json:"createdAt"`
}

// LikesChangedPayload carries the complete like list of one subject.
type LikesChangedPayload struct {
	SubjectKind ContentKind `json:"subjectKind"`
	SubjectID   string      `json:"subjectId"`
	Likes       []string    `json:"likes"`
}

// CommentsChangedPayload carries the complete comment list of one subject.
type CommentsChangedPayload struct {
	SubjectKind ContentKind       `json:"subjectKind"`
	SubjectID   string            `json:"subjectId"`
	Comments    []CommentSnapshot `json:"comments"`
}

// NotificationPayload wraps a newly created notification.
type NotificationPayload struct {
	Notification NotificationSnapshot `json:"notification"`
}

// MessagePayload wraps a newly created direct message.
type MessagePayload struct {
	Message MessageSnapshot `json:"message"`
}

// PresencePayload is the full set of currently online identities.
type PresencePayload struct {
	OnlineUserIDs []string `json:"onlineUserIds"`
}

// idString renders uuid.Nil as "" so a missing id is detectable on the wire.
func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NewCommentSnapshot builds a comment snapshot from a domain comment.
func NewCommentSnapshot(comment Comment) CommentSnapshot {
	return CommentSnapshot{
		ID:        idString(comment.ID),
		ContentID: idString(comment.ContentID),
		AuthorID:  idString(comment.AuthorID),
		Text:      comment.Text,
		CreatedAt: formatTime(comment.CreatedAt),
	}
}

// NewCommentSnapshots never returns nil so the wire list is always an array.
func NewCommentSnapshots(comments []Comment) []CommentSnapshot {
	out := make([]CommentSnapshot, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewCommentSnapshot(c))
	}
	return out
}

// LikeIDs renders a like list as strings, never nil.
func LikeIDs(likes []uuid.UUID) []string {
	out := make([]string, 0, len(likes))
	for _, id := range likes {
		out = append(out, id.String())
	}
	return out
}

// NewContentSnapshot builds a post or loop snapshot from domain content.
func NewContentSnapshot(content *Content) ContentSnapshot {
	return ContentSnapshot{
		ID:        idString(content.ID),
		Kind:      content.Kind,
		AuthorID:  idString(content.AuthorID),
		Caption:   content.Caption,
		MediaURL:  content.MediaURL,
		Likes:     LikeIDs(content.Likes),
		Comments:  NewCommentSnapshots(content.Comments),
		CreatedAt: formatTime(content.CreatedAt),
	}
}

// NewNotificationSnapshot builds a notification snapshot from a domain notification.
func NewNotificationSnapshot(n *Notification) NotificationSnapshot {
	var contentID *string
	if n.ContentID != nil {
		value := n.ContentID.String()
		contentID = &value
	}

	return NotificationSnapshot{
		ID:          idString(n.ID),
		Type:        string(n.Type),
		SenderID:    idString(n.SenderID),
		RecipientID: idString(n.RecipientID),
		ContentID:   contentID,
		ContentKind: n.ContentKind,
		Message:     n.Message,
		IsRead:      n.IsRead,
		CreatedAt:   formatTime(n.CreatedAt),
	}
}

// NewMessageSnapshot builds a message snapshot from a domain message.
func NewMessageSnapshot(m *Message) MessageSnapshot {
	return MessageSnapshot{
		ID:         idString(m.ID),
		SenderID:   idString(m.SenderID),
		ReceiverID: idString(m.ReceiverID),
		Text:       m.Text,
		ImageURL:   m.ImageURL,
		CreatedAt:  formatTime(m.CreatedAt),
	}
}
