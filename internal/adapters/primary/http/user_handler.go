package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/social-realtime/internal/adapters/primary/validation"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// UserHandler handles the follow graph.
type UserHandler struct {
	followService ports.FollowService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

func NewUserHandler(followService ports.FollowService, errorHandler *ErrorHandler, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		followService: followService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "user"),
	}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{userID}/follow", h.HandleToggleFollow)
}

// FollowResponse reports the follow state after a toggle.
type FollowResponse struct {
	Following bool `json:"following"`
}

// HandleToggleFollow handles POST /users/{userID}/follow
func (h *UserHandler) HandleToggleFollow(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	targetID, err := validation.ParseUUIDParam(r, "userID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	following, err := h.followService.ToggleFollow(r.Context(), claims.UserID, targetID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, FollowResponse{Following: following})
}
