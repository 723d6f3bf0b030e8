// Package handler provides the HTTP handlers for the wallet platform API.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service sentinel errors onto HTTP statuses. Unknown errors
// come back 0 so callers fall through to a logged 500.
func statusFor(err error) int {
	switch err {
	case errors.ErrUserNotFound,
		errors.ErrWalletNotFound,
		errors.ErrTransactionNotFound,
		errors.ErrTransferRequestNotFound,
		errors.ErrRecipientNotFound,
		errors.ErrSettlementNotFound,
		errors.ErrKYCSubmissionNotFound,
		errors.ErrRateNotAvailable,
		errors.ErrFeeSettingsNotFound:
		return http.StatusNotFound
	case errors.ErrUserAlreadyExists,
		errors.ErrWalletAlreadyExists,
		errors.ErrVersionConflict:
		return http.StatusConflict
	case errors.ErrInvalidCredentials:
		return http.StatusUnauthorized
	case errors.ErrForbidden,
		errors.ErrUserInactive,
		errors.ErrKYCRequired:
		return http.StatusForbidden
	case errors.ErrInsufficientBalance,
		errors.ErrSelfTransfer,
		errors.ErrUnsupportedCurrency,
		errors.ErrInvalidTransactionType,
		errors.ErrOTPMismatch,
		errors.ErrOTPAttemptsExhausted,
		errors.ErrInvalidSettlementAction,
		errors.ErrSettlementNotPending,
		errors.ErrDeliveryMethodRequired,
		errors.ErrSourceAgentRequired,
		errors.ErrSourceAgentInsufficientCash,
		errors.ErrDeliveryNotPending,
		errors.ErrKYCAlreadyVerified,
		errors.ErrKYCUnderReview,
		errors.ErrKYCNotUnderReview,
		errors.ErrInvalidKYCDocument,
		errors.ErrInvalidKYCAction,
		errors.ErrKYCReasonRequired,
		errors.ErrInsufficientProfit,
		errors.ErrBankDetailsRequired,
		errors.ErrInvalidWithdrawalMethod:
		return http.StatusBadRequest
	}
	return 0
}

// respondServiceError translates a service error; anything unmapped is a
// logged 500 with a generic body.
func respondServiceError(w http.ResponseWriter, log logger.Logger, err error) {
	if status := statusFor(err); status != 0 {
		respondError(w, status, err.Error())
		return
	}
	log.Error("Unhandled service error", map[string]interface{}{"error": err.Error()})
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pagination reads limit/offset query params with sane defaults.
func pagination(r *http.Request) (limit, offset int) {
	limit, offset = 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
