package handler

import (
	"net/http"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/kyc"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type KYCHandler struct {
	service   *kyc.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewKYCHandler(service *kyc.Service, v *validator.Validator, log logger.Logger) *KYCHandler {
	return &KYCHandler{
		service:   service,
		validator: v,
		logger:    log,
	}
}

func (h *KYCHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req kyc.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	sub, err := h.service.Submit(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}

func (h *KYCHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sub, err := h.service.Status(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

// Pending lists submissions awaiting review (admin).
func (h *KYCHandler) Pending(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	subs, err := h.service.Pending(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}

// Review decides a submission (admin).
func (h *KYCHandler) Review(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req kyc.ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	sub, err := h.service.Review(r.Context(), adminID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}
