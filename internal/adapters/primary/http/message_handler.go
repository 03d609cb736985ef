package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/social-realtime/internal/adapters/primary/validation"
	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// MessageHandler handles direct messaging.
type MessageHandler struct {
	messageService ports.MessageService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService ports.MessageService, errorHandler *ErrorHandler, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "message"),
	}
}

// RegisterRoutes sets up the routing for message endpoints.
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/partners", h.HandlePartners)
	r.Get("/{partnerID}", h.HandleConversation)
	r.Post("/{partnerID}", h.HandleSend)
}

// SendMessageRequest defines the expected JSON body for a direct message.
type SendMessageRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// Validate validates the send message request
func (r *SendMessageRequest) Validate() error {
	v := validation.NewValidator()

	v.Custom("text", r.Text != "" || r.ImageURL != "", "Text or image is required").
		MaxLength("text", r.Text, domain.MaxMessageTextLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// PartnerDTO is a previous chat partner.
type PartnerDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
	CreatedAt string `json:"createdAt"`
}

func toPartnerDTOs(users []*domain.User) []PartnerDTO {
	response := make([]PartnerDTO, 0, len(users))
	for _, u := range users {
		response = append(response, PartnerDTO{
			ID:        u.ID.String(),
			Username:  u.Username,
			FullName:  u.FullName,
			AvatarURL: u.AvatarURL,
			CreatedAt: u.CreatedAt.Format(time.RFC3339),
		})
	}
	return response
}

// HandlePartners handles GET /messages/partners
func (h *MessageHandler) HandlePartners(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	partners, err := h.messageService.Partners(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toPartnerDTOs(partners))
}

// HandleConversation handles GET /messages/{partnerID}
func (h *MessageHandler) HandleConversation(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	partnerID, err := validation.ParseUUIDParam(r, "partnerID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	messages, err := h.messageService.Conversation(r.Context(), claims.UserID, partnerID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := make([]domain.MessageSnapshot, 0, len(messages))
	for _, m := range messages {
		response = append(response, domain.NewMessageSnapshot(m))
	}
	WriteList(w, response)
}

// HandleSend handles POST /messages/{partnerID}
func (h *MessageHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	partnerID, err := validation.ParseUUIDParam(r, "partnerID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[SendMessageRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	msg, err := h.messageService.Send(r.Context(), ports.SendMessageParams{
		SenderID:   claims.UserID,
		ReceiverID: partnerID,
		Text:       req.Text,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, domain.NewMessageSnapshot(msg))
}
