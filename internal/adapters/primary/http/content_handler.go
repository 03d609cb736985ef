package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/social-realtime/internal/adapters/primary/validation"
	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// ContentHandler serves posts and loops. One instance is mounted per kind.
type ContentHandler struct {
	kind           domain.ContentKind
	contentService ports.ContentService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewContentHandler creates a handler bound to one content kind.
func NewContentHandler(
	kind domain.ContentKind,
	contentService ports.ContentService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ContentHandler {
	return &ContentHandler{
		kind:           kind,
		contentService: contentService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "content", "kind", string(kind)),
	}
}

// RegisterRoutes sets up the routing for one content kind.
func (h *ContentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/{contentID}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Post("/like", h.HandleToggleLike)
		r.Post("/comments", h.HandleAddComment)
	})
}

// AddCommentRequest defines the expected JSON body for a comment.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// Validate validates the comment request
func (r *AddCommentRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("text", r.Text).
		MaxLength("text", r.Text, domain.MaxCommentTextLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// LikeResponse is the like toggle outcome with the full like list.
type LikeResponse struct {
	Liked   bool                   `json:"liked"`
	Content domain.ContentSnapshot `json:"content"`
}

// HandleGet handles GET /{kind}s/{contentID}
func (h *ContentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	contentID, err := validation.ParseUUIDParam(r, "contentID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	content, err := h.contentService.GetContent(r.Context(), h.kind, contentID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewContentSnapshot(content))
}

// HandleToggleLike handles POST /{kind}s/{contentID}/like
func (h *ContentHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	contentID, err := validation.ParseUUIDParam(r, "contentID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.contentService.ToggleLike(r.Context(), h.kind, contentID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "like toggled",
		"content_id", contentID,
		"liked", result.Liked,
	)

	WriteJSON(w, http.StatusOK, LikeResponse{
		Liked:   result.Liked,
		Content: domain.NewContentSnapshot(result.Content),
	})
}

// HandleAddComment handles POST /{kind}s/{contentID}/comments
func (h *ContentHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	contentID, err := validation.ParseUUIDParam(r, "contentID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[AddCommentRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	content, err := h.contentService.AddComment(r.Context(), ports.AddCommentParams{
		Kind:      h.kind,
		ContentID: contentID,
		ActorID:   claims.UserID,
		Text:      req.Text,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, domain.NewContentSnapshot(content))
}
