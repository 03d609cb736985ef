// Package rest fetches the snapshots a reconcile.Store is seeded with.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lorrc/social-realtime/internal/core/domain"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type listResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// Client is an authenticated client for the /api/v1 REST surface.
type Client struct {
	http *resty.Client
}

// New creates a client for baseURL (e.g. http://localhost:8080) that sends
// token as a bearer credential.
func New(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "rest_client")

	h := resty.New().
		SetBaseURL(baseURL+"/api/v1").
		SetTimeout(timeout).
		SetHeader("User-Agent", "livewatch").
		SetAuthToken(token)

	h.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("http response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
		)
		return nil
	})

	return &Client{http: h}
}

// Content fetches one post or loop.
func (c *Client) Content(ctx context.Context, kind domain.ContentKind, id string) (domain.ContentSnapshot, error) {
	var out domain.ContentSnapshot
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		Get("/" + string(kind) + "s/{id}")
	return out, check(resp, err)
}

// Notifications fetches the caller's notifications, most recent first.
func (c *Client) Notifications(ctx context.Context) ([]domain.NotificationSnapshot, error) {
	var out listResponse[domain.NotificationSnapshot]
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/notifications")
	return out.Data, check(resp, err)
}

// Conversation fetches the history with partnerID, oldest first.
func (c *Client) Conversation(ctx context.Context, partnerID string) ([]domain.MessageSnapshot, error) {
	var out listResponse[domain.MessageSnapshot]
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("partnerID", partnerID).
		SetResult(&out).
		Get("/messages/{partnerID}")
	return out.Data, check(resp, err)
}

// Online fetches the current presence set.
func (c *Client) Online(ctx context.Context) ([]string, error) {
	var out domain.PresencePayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/presence")
	return out.OnlineUserIDs, check(resp, err)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsSuccess() {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode(), Code: "UNKNOWN", Message: string(resp.Body())}
	var body errorBody
	if json.Unmarshal(resp.Body(), &body) == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	}
	return apiErr
}
