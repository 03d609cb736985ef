package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// HealthChecker is a dependency that can be pinged, such as the database pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RealtimeStats is the view of the event hub the health endpoints need.
type RealtimeStats interface {
	Counts() (open, online int)
	Done() <-chan struct{}
}

// HealthHandler serves liveness, readiness and detailed health.
type HealthHandler struct {
	db        HealthChecker
	realtime  RealtimeStats
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db HealthChecker, realtime RealtimeStats, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		realtime:  realtime,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// RealtimeHealth is the live connection section of /health.
type RealtimeHealth struct {
	Connections int `json:"connections"`
	OnlineUsers int `json:"online_users"`
}

// DetailedHealthResponse is the body of /health.
type DetailedHealthResponse struct {
	HealthResponse
	Realtime   RealtimeHealth `json:"realtime"`
	Goroutines int            `json:"goroutines"`
}

// HandleLiveness reports whether the process should be restarted. A stopped
// event hub fails liveness.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	hub := h.checkHub()
	status, code := statusHealthy, http.StatusOK
	if hub.Status != statusHealthy {
		status, code = statusUnhealthy, http.StatusServiceUnavailable
	}

	WriteJSON(w, code, h.response(status, map[string]Check{"hub": hub}))
}

// HandleReadiness reports whether the instance can take REST and websocket
// traffic: the database answers and the hub is still routing.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := h.runChecks(r.Context())

	status, code := statusHealthy, http.StatusOK
	if !allHealthy(checks) {
		status, code = statusUnhealthy, http.StatusServiceUnavailable
	}

	WriteJSON(w, code, h.response(status, checks))
}

// HandleHealth adds live connection counts to the readiness checks.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := h.runChecks(r.Context())

	status, code := statusHealthy, http.StatusOK
	if !allHealthy(checks) {
		status, code = statusDegraded, http.StatusServiceUnavailable
	}

	resp := DetailedHealthResponse{
		HealthResponse: h.response(status, checks),
		Goroutines:     runtime.NumGoroutine(),
	}
	if h.realtime != nil {
		resp.Realtime.Connections, resp.Realtime.OnlineUsers = h.realtime.Counts()
	}

	WriteJSON(w, code, resp)
}

func (h *HealthHandler) runChecks(ctx context.Context) map[string]Check {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return map[string]Check{
		"database": h.checkDatabase(ctx),
		"hub":      h.checkHub(),
	}
}

func (h *HealthHandler) response(status string, checks map[string]Check) HealthResponse {
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	}
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{Status: statusUnhealthy, Message: "database not configured"}
	}

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start).String()
	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	}
	return Check{Status: statusHealthy, Latency: latency}
}

// checkHub fails once the hub loop has exited; routes would be dropped.
func (h *HealthHandler) checkHub() Check {
	if h.realtime == nil {
		return Check{Status: statusUnhealthy, Message: "event hub not configured"}
	}

	select {
	case <-h.realtime.Done():
		return Check{Status: statusUnhealthy, Message: "event loop stopped"}
	default:
	}

	open, online := h.realtime.Counts()
	return Check{
		Status:  statusHealthy,
		Message: fmt.Sprintf("%d connections, %d online", open, online),
	}
}

func allHealthy(checks map[string]Check) bool {
	for _, c := range checks {
		if c.Status != statusHealthy {
			return false
		}
	}
	return true
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}
