package handler

import (
	"net/http"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/notification"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type WSHandler struct {
	hub    *notification.Hub
	logger logger.Logger
}

func NewWSHandler(hub *notification.Hub, log logger.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: log}
}

// Connect upgrades the request to a websocket bound to the authenticated
// user. The hub owns the connection from here on.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.hub.Serve(w, r, userID); err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("Websocket upgrade failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
