package handler

import (
	"net/http"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/transfer"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type TransferHandler struct {
	service   *transfer.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewTransferHandler(service *transfer.Service, v *validator.Validator, log logger.Logger) *TransferHandler {
	return &TransferHandler{
		service:   service,
		validator: v,
		logger:    log,
	}
}

func (h *TransferHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req transfer.InitiateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	resp, err := h.service.Initiate(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusAccepted, resp)
}

func (h *TransferHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req transfer.ConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	resp, remaining, err := h.service.Confirm(r.Context(), userID, &req)
	if err != nil {
		// A wrong code tells the client how many tries are left; the
		// final one reports zero.
		if err == errors.ErrOTPMismatch || err == errors.ErrOTPAttemptsExhausted {
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":              err.Error(),
				"remaining_attempts": remaining,
			})
			return
		}
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *TransferHandler) Resend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req transfer.ResendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	resp, err := h.service.Resend(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusAccepted, resp)
}
