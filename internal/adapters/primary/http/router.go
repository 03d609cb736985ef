package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	mw "github.com/lorrc/social-realtime/internal/adapters/primary/http/middleware"
	"github.com/lorrc/social-realtime/internal/auth"
	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// RouterDeps is everything the HTTP surface is built from. Optional fields
// may be nil.
type RouterDeps struct {
	TokenManager        *auth.TokenManager
	ContentService      ports.ContentService
	FollowService       ports.FollowService
	NotificationService ports.NotificationService
	MessageService      ports.MessageService
	Presence            ports.PresenceReader
	WebSocket           http.Handler
	Health              *HealthHandler
	RateLimiter         *mw.RateLimiter
	Metrics             http.Handler
	MetricsPath         string
	AllowedOrigins      []string
	Logger              *slog.Logger
}

// NewRouter wires middleware and every route under /api/v1.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	errorHandler := NewErrorHandler(logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if deps.Health != nil {
		deps.Health.RegisterRoutes(r)
	}

	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Authentication is handled inside the handler so anonymous
		// connections can still observe presence.
		if deps.WebSocket != nil {
			r.Method(http.MethodGet, "/ws", deps.WebSocket)
		}

		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.Middleware)
			}
			r.Use(mw.JWTMiddleware(deps.TokenManager))

			if deps.ContentService != nil {
				r.Route("/posts", NewContentHandler(domain.ContentPost, deps.ContentService, errorHandler, logger).RegisterRoutes)
				r.Route("/loops", NewContentHandler(domain.ContentLoop, deps.ContentService, errorHandler, logger).RegisterRoutes)
			}
			if deps.FollowService != nil {
				r.Route("/users", NewUserHandler(deps.FollowService, errorHandler, logger).RegisterRoutes)
			}
			if deps.NotificationService != nil {
				r.Route("/notifications", NewNotificationHandler(deps.NotificationService, errorHandler, logger).RegisterRoutes)
			}
			if deps.MessageService != nil {
				r.Route("/messages", NewMessageHandler(deps.MessageService, errorHandler, logger).RegisterRoutes)
			}
			if deps.Presence != nil {
				r.Get("/presence", NewPresenceHandler(deps.Presence).HandleOnline)
			}
		})
	})

	return r
}
