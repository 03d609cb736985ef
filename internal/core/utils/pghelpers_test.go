package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullString(t *testing.T) {
	assert.False(t, ToNullString(nil).Valid)
	assert.Nil(t, FromNullString(ToNullString(nil)))

	s := "hello"
	got := FromNullString(ToNullString(&s))
	require.NotNil(t, got)
	assert.Equal(t, "hello", *got)
}

func TestNullUUID(t *testing.T) {
	assert.False(t, ToNullUUID(nil).Valid)
	assert.Nil(t, FromNullUUID(ToNullUUID(nil)))

	id := uuid.New()
	got := FromNullUUID(ToNullUUID(&id))
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}
