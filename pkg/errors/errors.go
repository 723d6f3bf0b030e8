// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrForbidden          = errors.New("operation not permitted for this role")

	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletAlreadyExists = errors.New("wallet already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Transfer OTP errors
	ErrTransferRequestNotFound = errors.New("transfer request not found or expired")
	ErrOTPMismatch             = errors.New("incorrect verification code")
	ErrOTPAttemptsExhausted    = errors.New("verification attempts exhausted")
	ErrRecipientNotFound       = errors.New("recipient not found")
	ErrSelfTransfer            = errors.New("cannot transfer to own wallet")

	// Settlement errors
	ErrSettlementNotFound          = errors.New("settlement not found")
	ErrInvalidSettlementAction     = errors.New("invalid settlement action")
	ErrSettlementNotPending        = errors.New("settlement is not pending")
	ErrDeliveryMethodRequired      = errors.New("delivery method required for cash request approval")
	ErrSourceAgentRequired         = errors.New("source agent required for agent delivery")
	ErrSourceAgentInsufficientCash = errors.New("source agent does not hold enough cash")
	ErrDeliveryNotPending          = errors.New("settlement has no pending delivery")
	ErrVersionConflict             = errors.New("settlement was modified concurrently")

	// Rates and fees
	ErrRateNotAvailable       = errors.New("exchange rate not available")
	ErrFeeSettingsNotFound    = errors.New("fee settings not found")
	ErrUnsupportedCurrency    = errors.New("unsupported currency")
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// KYC errors
	ErrKYCSubmissionNotFound = errors.New("kyc submission not found")
	ErrKYCAlreadyVerified    = errors.New("kyc already verified")
	ErrKYCUnderReview        = errors.New("kyc already under review")
	ErrKYCNotUnderReview     = errors.New("kyc submission is not under review")
	ErrKYCRequired           = errors.New("kyc verification required")
	ErrInvalidKYCDocument    = errors.New("unsupported kyc document type")
	ErrInvalidKYCAction      = errors.New("invalid kyc review action")
	ErrKYCReasonRequired     = errors.New("rejection reason required")

	// Platform profit errors
	ErrInsufficientProfit      = errors.New("insufficient platform profit balance")
	ErrBankDetailsRequired     = errors.New("bank details required for bank withdrawal")
	ErrInvalidWithdrawalMethod = errors.New("invalid withdrawal method")
)

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
