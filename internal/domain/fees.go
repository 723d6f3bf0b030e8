package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeSettings is the per-currency fee schedule. One row per currency,
// mutated by admins only.
type FeeSettings struct {
	ID                           uuid.UUID       `json:"id" db:"id"`
	Currency                     Currency        `json:"currency" db:"currency"`
	DepositFeePercent            decimal.Decimal `json:"deposit_fee_percent" db:"deposit_fee_percent"`
	DepositFeeFixed              decimal.Decimal `json:"deposit_fee_fixed" db:"deposit_fee_fixed"`
	WithdrawalFeePercent         decimal.Decimal `json:"withdrawal_fee_percent" db:"withdrawal_fee_percent"`
	WithdrawalFeeFixed           decimal.Decimal `json:"withdrawal_fee_fixed" db:"withdrawal_fee_fixed"`
	TransferFeePercent           decimal.Decimal `json:"transfer_fee_percent" db:"transfer_fee_percent"`
	TransferFeeFixed             decimal.Decimal `json:"transfer_fee_fixed" db:"transfer_fee_fixed"`
	QRPaymentFeePercent          decimal.Decimal `json:"qr_payment_fee_percent" db:"qr_payment_fee_percent"`
	QRPaymentFeeFixed            decimal.Decimal `json:"qr_payment_fee_fixed" db:"qr_payment_fee_fixed"`
	ServiceFeePercent            decimal.Decimal `json:"service_fee_percent" db:"service_fee_percent"`
	ServiceFeeFixed              decimal.Decimal `json:"service_fee_fixed" db:"service_fee_fixed"`
	AgentCommissionPercent       decimal.Decimal `json:"agent_commission_percent" db:"agent_commission_percent"`
	SettlementPlatformCommission decimal.Decimal `json:"settlement_platform_commission" db:"settlement_platform_commission"`
	SettlementAgentCommission    decimal.Decimal `json:"settlement_agent_commission" db:"settlement_agent_commission"`
	UpdatedBy                    *uuid.UUID      `json:"updated_by,omitempty" db:"updated_by"`
	UpdatedAt                    time.Time       `json:"updated_at" db:"updated_at"`
}

// Schedule returns the percent and fixed components for a transaction type.
func (f *FeeSettings) Schedule(txType TransactionType) (percent, fixed decimal.Decimal) {
	switch txType {
	case TransactionTypeDeposit:
		return f.DepositFeePercent, f.DepositFeeFixed
	case TransactionTypeWithdrawal:
		return f.WithdrawalFeePercent, f.WithdrawalFeeFixed
	case TransactionTypeTransfer:
		return f.TransferFeePercent, f.TransferFeeFixed
	case TransactionTypeQRPayment:
		return f.QRPaymentFeePercent, f.QRPaymentFeeFixed
	case TransactionTypeService:
		return f.ServiceFeePercent, f.ServiceFeeFixed
	}
	return decimal.Zero, decimal.Zero
}
