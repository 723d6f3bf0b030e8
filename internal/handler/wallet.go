package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/wallet"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type WalletHandler struct {
	service *wallet.Service
	logger  logger.Logger
}

func NewWalletHandler(service *wallet.Service, log logger.Logger) *WalletHandler {
	return &WalletHandler{service: service, logger: log}
}

func (h *WalletHandler) Balances(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	wallets, err := h.service.Balances(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"wallets": wallets})
}

func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	walletID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid wallet id")
		return
	}

	limit, offset := pagination(r)
	page, err := h.service.History(r.Context(), userID, walletID, limit, offset)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}
