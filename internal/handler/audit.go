package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/audit"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type AuditHandler struct {
	service *audit.Service
	logger  logger.Logger
}

func NewAuditHandler(service *audit.Service, log logger.Logger) *AuditHandler {
	return &AuditHandler{service: service, logger: log}
}

// List returns recent audit entries, optionally filtered by user_id.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid user_id")
			return
		}
		logs, err := h.service.ListByUser(r.Context(), userID, limit, offset)
		if err != nil {
			respondServiceError(w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
		return
	}

	logs, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}
