package handler

import (
	"net/http"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/profit"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type ProfitHandler struct {
	service   *profit.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewProfitHandler(service *profit.Service, v *validator.Validator, log logger.Logger) *ProfitHandler {
	return &ProfitHandler{
		service:   service,
		validator: v,
		logger:    log,
	}
}

// Overview returns profit pool balances and recent withdrawals.
func (h *ProfitHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// Withdraw moves accrued fee revenue out of the platform pool.
func (h *ProfitHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req profit.WithdrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	withdrawal, err := h.service.Withdraw(r.Context(), adminID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, withdrawal)
}
