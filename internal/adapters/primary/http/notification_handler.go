package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/social-realtime/internal/adapters/primary/validation"
	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// NotificationHandler handles HTTP requests for the caller's notifications
type NotificationHandler struct {
	notificationService ports.NotificationService
	errorHandler        *ErrorHandler
	logger              *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(
	notificationService ports.NotificationService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		errorHandler:        errorHandler,
		logger:              logger.With("handler", "notification"),
	}
}

// RegisterRoutes sets up the routing for notification endpoints.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/read", h.HandleMarkAsRead)
}

// MarkAsReadRequest lists the notifications to acknowledge.
type MarkAsReadRequest struct {
	IDs []string `json:"ids"`
}

// MarkAsReadResponse reports how many notifications changed state.
type MarkAsReadResponse struct {
	Updated int64 `json:"updated"`
}

// HandleList handles GET /notifications
func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationService.List(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := make([]domain.NotificationSnapshot, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, domain.NewNotificationSnapshot(n))
	}
	WriteList(w, response)
}

// HandleMarkAsRead handles POST /notifications/read
func (h *NotificationHandler) HandleMarkAsRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[MarkAsReadRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	v := validation.NewValidator()
	v.Custom("ids", len(req.IDs) > 0, "At least one id is required")
	ids := v.UUIDs("ids", req.IDs)
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	updated, err := h.notificationService.MarkAsRead(r.Context(), claims.UserID, ids)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, MarkAsReadResponse{Updated: updated})
}
