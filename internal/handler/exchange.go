package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/exchange"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type ExchangeHandler struct {
	service   *exchange.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewExchangeHandler(service *exchange.Service, v *validator.Validator, log logger.Logger) *ExchangeHandler {
	return &ExchangeHandler{
		service:   service,
		validator: v,
		logger:    log,
	}
}

// Rates returns the active deposit and withdraw rates.
func (h *ExchangeHandler) Rates(w http.ResponseWriter, r *http.Request) {
	deposit, withdraw, err := h.service.Rates(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"deposit":  deposit,
		"withdraw": withdraw,
	})
}

// SetRatesRequest carries both admin-set rates; either may be omitted.
type SetRatesRequest struct {
	DepositRate  *decimal.Decimal `json:"deposit_rate,omitempty" validate:"omitempty,gt=0"`
	WithdrawRate *decimal.Decimal `json:"withdraw_rate,omitempty" validate:"omitempty,gt=0"`
}

// SetRates updates one or both rates (admin).
func (h *ExchangeHandler) SetRates(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SetRatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DepositRate == nil && req.WithdrawRate == nil {
		respondError(w, http.StatusBadRequest, "At least one rate is required")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	result := map[string]interface{}{}
	if req.DepositRate != nil {
		rate, err := h.service.SetRate(r.Context(), adminID, &exchange.SetRateRequest{
			Type: domain.RateTypeDeposit,
			Rate: *req.DepositRate,
		})
		if err != nil {
			respondServiceError(w, h.logger, err)
			return
		}
		result["deposit"] = rate
	}
	if req.WithdrawRate != nil {
		rate, err := h.service.SetRate(r.Context(), adminID, &exchange.SetRateRequest{
			Type: domain.RateTypeWithdraw,
			Rate: *req.WithdrawRate,
		})
		if err != nil {
			respondServiceError(w, h.logger, err)
			return
		}
		result["withdraw"] = rate
	}

	respondJSON(w, http.StatusOK, result)
}

// History returns the rate history for one type (admin).
func (h *ExchangeHandler) History(w http.ResponseWriter, r *http.Request) {
	rateType := domain.RateType(r.URL.Query().Get("type"))
	limit, _ := pagination(r)

	rates, err := h.service.History(r.Context(), rateType, limit)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"rates": rates})
}
