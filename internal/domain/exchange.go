package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateType distinguishes the two SYP/USD rates the platform quotes.
type RateType string

const (
	RateTypeDeposit  RateType = "DEPOSIT"
	RateTypeWithdraw RateType = "WITHDRAW"
)

func (t RateType) Valid() bool {
	return t == RateTypeDeposit || t == RateTypeWithdraw
}

// ExchangeRate is an admin-set SYP-per-USD rate. Exactly one row per type
// is active at any time; older rows are kept as history.
type ExchangeRate struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Type      RateType        `json:"type" db:"type"`
	Rate      decimal.Decimal `json:"rate" db:"rate"`
	IsActive  bool            `json:"is_active" db:"is_active"`
	UpdatedBy *uuid.UUID      `json:"updated_by,omitempty" db:"updated_by"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
