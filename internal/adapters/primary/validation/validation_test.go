package validation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_CollectsFieldErrors(t *testing.T) {
	v := NewValidator()
	v.Required("text", "  ").
		MaxLength("caption", strings.Repeat("x", 11), 10).
		UUID("partnerId", "nope").
		Custom("image", true, "never")

	require.True(t, v.HasErrors())
	errs := v.Errors().Errors
	assert.Contains(t, errs, "text")
	assert.Contains(t, errs, "caption")
	assert.Contains(t, errs, "partnerId")
	assert.NotContains(t, errs, "image")
}

func TestValidator_UUIDs(t *testing.T) {
	good := uuid.New()
	v := NewValidator()

	ids := v.UUIDs("ids", []string{good.String(), "bad"})

	assert.Equal(t, []uuid.UUID{good}, ids)
	assert.Len(t, v.Errors().Errors["ids"], 1)
}

func TestDecodeAndValidate(t *testing.T) {
	type body struct {
		Text string `json:"text"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}`))
	got, err := DecodeAndValidate[body](req)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Text)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	_, err = DecodeAndValidate[body](req)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()

	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	got, err := ParseUUIDParam(withParam(id.String()), "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(withParam("123"), "id")
	assert.Error(t, err)
}
