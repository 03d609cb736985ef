package http

import (
	"net/http"

	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// PresenceHandler serves the current online set, the same list the live
// connection pushes on every change.
type PresenceHandler struct {
	presence ports.PresenceReader
}

func NewPresenceHandler(presence ports.PresenceReader) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// HandleOnline handles GET /presence
func (h *PresenceHandler) HandleOnline(w http.ResponseWriter, r *http.Request) {
	online := h.presence.Online()
	if online == nil {
		online = []string{}
	}
	WriteJSON(w, http.StatusOK, domain.PresencePayload{OnlineUserIDs: online})
}
