package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Validate(t *testing.T) {
	postID := uuid.New()
	liker := uuid.New()

	tests := []struct {
		name    string
		event   domain.Event
		wantErr bool
	}{
		{
			name: "likes changed",
			event: domain.NewLikesChangedEvent(&domain.Content{
				ID: postID, Kind: domain.ContentPost, Likes: []uuid.UUID{liker},
			}),
		},
		{
			name:    "likes changed without subject id",
			event:   domain.NewLikesChangedEvent(&domain.Content{Kind: domain.ContentPost}),
			wantErr: true,
		},
		{
			name: "likes changed with unknown kind",
			event: domain.Event{Type: domain.EventLikesChanged, Payload: domain.LikesChangedPayload{
				SubjectKind: "story", SubjectID: postID.String(),
			}},
			wantErr: true,
		},
		{
			name: "comments changed as pointer payload",
			event: domain.Event{Type: domain.EventCommentsChanged, Payload: &domain.CommentsChangedPayload{
				SubjectKind: domain.ContentLoop, SubjectID: postID.String(),
			}},
		},
		{
			name:    "comments changed with nil payload",
			event:   domain.Event{Type: domain.EventCommentsChanged},
			wantErr: true,
		},
		{
			name:    "notification without id",
			event:   domain.Event{Type: domain.EventNotificationCreated, Payload: domain.NotificationPayload{}},
			wantErr: true,
		},
		{
			name:    "message with wrong payload type",
			event:   domain.Event{Type: domain.EventMessageCreated, Payload: "hello"},
			wantErr: true,
		},
		{
			name:  "presence with empty set",
			event: domain.NewPresenceEvent(nil),
		},
		{
			name:  "pong",
			event: domain.Event{Type: domain.EventPong},
		},
		{
			name:    "unknown type",
			event:   domain.Event{Type: "likedPost"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrMalformedEvent)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewLikesChangedEvent_WireShape(t *testing.T) {
	postID := uuid.New()
	liker := uuid.New()

	event := domain.NewLikesChangedEvent(&domain.Content{
		ID:    postID,
		Kind:  domain.ContentPost,
		Likes: []uuid.UUID{liker},
	})

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "LIKES_CHANGED", decoded["type"])
	payload := decoded["payload"].(map[string]any)
	assert.Equal(t, "post", payload["subjectKind"])
	assert.Equal(t, postID.String(), payload["subjectId"])
	assert.Equal(t, []any{liker.String()}, payload["likes"])
}

func TestNewCommentsChangedEvent_EmptyListIsArray(t *testing.T) {
	event := domain.NewCommentsChangedEvent(&domain.Content{ID: uuid.New(), Kind: domain.ContentLoop})

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"comments":[]`)
}

func TestNewPresenceEvent_CopiesInput(t *testing.T) {
	online := []string{"a", "b"}
	event := domain.NewPresenceEvent(online)
	online[0] = "z"

	payload := event.Payload.(domain.PresencePayload)
	assert.Equal(t, []string{"a", "b"}, payload.OnlineUserIDs)
}
