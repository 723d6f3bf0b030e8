package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/settlement"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type SettlementHandler struct {
	service   *settlement.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewSettlementHandler(service *settlement.Service, v *validator.Validator, log logger.Logger) *SettlementHandler {
	return &SettlementHandler{
		service:   service,
		validator: v,
		logger:    log,
	}
}

// Create opens a settlement for the authenticated agent.
func (h *SettlementHandler) Create(w http.ResponseWriter, r *http.Request) {
	agentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req settlement.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	s, err := h.service.Create(r.Context(), agentID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

// ListMine lists the authenticated agent's settlements.
func (h *SettlementHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	agentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset := pagination(r)
	settlements, err := h.service.ListByAgent(r.Context(), agentID, limit, offset)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"settlements": settlements})
}

// ListAll is the admin view over every settlement.
func (h *SettlementHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	settlements, err := h.service.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"settlements": settlements})
}

// Action applies an admin decision: approve, reject, or confirm_delivery.
// A stale read by a concurrent admin surfaces as 409.
func (h *SettlementHandler) Action(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req settlement.ActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	s, err := h.service.Apply(r.Context(), adminID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// AgentsWithCash lists candidate cash sources for a FROM_AGENT delivery.
func (h *SettlementHandler) AgentsWithCash(w http.ResponseWriter, r *http.Request) {
	currency := domain.Currency(r.URL.Query().Get("currency"))
	minAmount := decimal.Zero
	if v := r.URL.Query().Get("minAmount"); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid minAmount")
			return
		}
		minAmount = parsed
	}

	agents, err := h.service.AgentsWithCash(r.Context(), currency, minAmount)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"agents": agents})
}
