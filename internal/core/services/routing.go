package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// routeEvent hands an event to the router after the mutation committed.
// Routing failures never fail the request that caused them.
func routeEvent(ctx context.Context, router ports.EventRouter, logger *slog.Logger, event domain.Event, recipients ...uuid.UUID) {
	if router == nil {
		return
	}
	if err := router.Route(event, recipients...); err != nil {
		logger.ErrorContext(ctx, "failed to route event",
			"event_type", event.Type,
			"error", err,
		)
	}
}
