package handler

import (
	"net/http"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/payment"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type PaymentHandler struct {
	service   *payment.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewPaymentHandler(service *payment.Service, v *validator.Validator, log logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: v,
		logger:    log,
	}
}

// Deposit handles agent cash-in. The route is agent-gated by middleware.
func (h *PaymentHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	agentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req payment.DepositRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	tx, err := h.service.Deposit(r.Context(), agentID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"transaction": tx})
}

// Withdraw handles agent cash-out.
func (h *PaymentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	agentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req payment.WithdrawalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	tx, err := h.service.Withdraw(r.Context(), agentID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"transaction": tx})
}

// PayQR settles a scan-to-pay purchase from the authenticated payer.
func (h *PaymentHandler) PayQR(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req payment.QRPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	tx, err := h.service.PayQR(r.Context(), payerID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"transaction": tx})
}
