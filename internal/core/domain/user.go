package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
)

const (
	MaxUsernameLength = 50
	MaxFullNameLength = 255
)

// User is the public profile of an account. Credentials live elsewhere.
type User struct {
	ID        uuid.UUID
	Username  string
	FullName  string
	AvatarURL string
	CreatedAt time.Time
}

// UserParams holds parameters for creating a user profile
type UserParams struct {
	Username  string
	FullName  string
	AvatarURL string
}

// NewUser validates params and builds a new profile.
func NewUser(params UserParams) (*User, error) {
	username := strings.TrimSpace(params.Username)

	errs := apperrors.NewValidationErrors()
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) > MaxUsernameLength {
		errs.Add("username", "Username must be 50 characters or less")
	}
	if len(params.FullName) > MaxFullNameLength {
		errs.Add("fullName", "Full name must be 255 characters or less")
	}
	if errs.HasErrors() {
		return nil, errs
	}

	return &User{
		ID:        uuid.New(),
		Username:  username,
		FullName:  strings.TrimSpace(params.FullName),
		AvatarURL: params.AvatarURL,
		CreatedAt: time.Now().UTC(),
	}, nil
}
