package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubStats struct {
	open, online int
	done         chan struct{}
}

func (s stubStats) Counts() (int, int) { return s.open, s.online }
func (s stubStats) Done() <-chan struct{} { return s.done }

func stoppedHub() stubStats {
	done := make(chan struct{})
	close(done)
	return stubStats{done: done}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		db         HealthChecker
		hub        RealtimeStats
		wantStatus int
	}{
		{"liveness ignores database", "/health/live", stubPinger{err: errors.New("down")}, stubStats{}, stdhttp.StatusOK},
		{"liveness fails once hub stopped", "/health/live", stubPinger{}, stoppedHub(), stdhttp.StatusServiceUnavailable},
		{"ready when database answers", "/health/ready", stubPinger{}, stubStats{}, stdhttp.StatusOK},
		{"not ready when database fails", "/health/ready", stubPinger{err: errors.New("down")}, stubStats{}, stdhttp.StatusServiceUnavailable},
		{"not ready without database", "/health/ready", nil, stubStats{}, stdhttp.StatusServiceUnavailable},
		{"not ready once hub stopped", "/health/ready", stubPinger{}, stoppedHub(), stdhttp.StatusServiceUnavailable},
		{"not ready without hub", "/health/ready", stubPinger{}, nil, stdhttp.StatusServiceUnavailable},
		{"health degraded when database fails", "/health", stubPinger{err: errors.New("down")}, stubStats{}, stdhttp.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHealthHandler(tt.db, tt.hub, "test").RegisterRoutes(r)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestHealthHandler_ReportsRealtimeCounts(t *testing.T) {
	r := chi.NewRouter()
	NewHealthHandler(stubPinger{}, stubStats{open: 3, online: 2}, "1.2.3").RegisterRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, "/health", nil))
	require.Equal(t, stdhttp.StatusOK, rr.Code)

	var body struct {
		Status   string `json:"status"`
		Version  string `json:"version"`
		Realtime struct {
			Connections int `json:"connections"`
			OnlineUsers int `json:"online_users"`
		} `json:"realtime"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, 3, body.Realtime.Connections)
	assert.Equal(t, 2, body.Realtime.OnlineUsers)
}

func TestHealthHandler_HubCheck(t *testing.T) {
	r := chi.NewRouter()
	NewHealthHandler(stubPinger{}, stoppedHub(), "test").RegisterRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, "/health", nil))
	require.Equal(t, stdhttp.StatusServiceUnavailable, rr.Code)

	var body HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"].Status)
	assert.Equal(t, "unhealthy", body.Checks["hub"].Status)
	assert.Equal(t, "event loop stopped", body.Checks["hub"].Message)
}
