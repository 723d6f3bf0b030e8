package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/fees"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type FeesHandler struct {
	service   *fees.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewFeesHandler(service *fees.Service, v *validator.Validator, log logger.Logger) *FeesHandler {
	return &FeesHandler{
		service:   service,
		validator: v,
		logger:    log,
	}
}

// Quote prices a prospective transaction without running it.
func (h *FeesHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	currency := domain.Currency(q.Get("currency"))
	txType := domain.TransactionType(q.Get("type"))
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil || !amount.IsPositive() {
		respondError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	fee, total, err := h.service.Quote(r.Context(), currency, txType, amount)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"amount":   amount,
		"fee":      fee,
		"total":    total,
		"currency": currency,
	})
}

// Settings returns a currency's fee schedule (admin).
func (h *FeesHandler) Settings(w http.ResponseWriter, r *http.Request) {
	currency := domain.Currency(r.URL.Query().Get("currency"))
	settings, err := h.service.Settings(r.Context(), currency)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings replaces a currency's fee schedule (admin).
func (h *FeesHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req fees.UpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), &req, adminID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
