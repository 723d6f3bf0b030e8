package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlatformProfit is the accumulated fee revenue pool for one currency.
type PlatformProfit struct {
	Currency  Currency        `json:"currency" db:"currency"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// WithdrawalMethod is how platform profit leaves the system.
type WithdrawalMethod string

const (
	WithdrawalMethodBank WithdrawalMethod = "BANK"
	WithdrawalMethodCash WithdrawalMethod = "CASH"
)

func (m WithdrawalMethod) Valid() bool {
	return m == WithdrawalMethodBank || m == WithdrawalMethodCash
}

// ProfitWithdrawal records an admin withdrawal from the profit pool.
type ProfitWithdrawal struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	Amount      decimal.Decimal  `json:"amount" db:"amount"`
	Currency    Currency         `json:"currency" db:"currency"`
	Method      WithdrawalMethod `json:"method" db:"method"`
	BankDetails *string          `json:"bank_details,omitempty" db:"bank_details"`
	Phone       *string          `json:"phone,omitempty" db:"phone"`
	Notes       string           `json:"notes" db:"notes"`
	Status      string           `json:"status" db:"status"`
	RequestedBy uuid.UUID        `json:"requested_by" db:"requested_by"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}
