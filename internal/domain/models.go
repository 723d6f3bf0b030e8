// Package domain holds the entities shared across services and repositories.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency represents a supported wallet currency.
type Currency string

const (
	USD Currency = "USD"
	SYP Currency = "SYP" // Syrian Pound
)

// Currencies lists every currency a wallet can hold.
var Currencies = []Currency{USD, SYP}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == USD || c == SYP
}

// Exponent returns the number of decimal places amounts in this
// currency are rounded to. SYP amounts are whole pounds.
func (c Currency) Exponent() int32 {
	if c == SYP {
		return 0
	}
	return 2
}

// User represents a platform account: end user, agent, merchant, or admin.
type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Phone         string     `json:"phone" db:"phone"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	FirstName     string     `json:"first_name" db:"first_name"`
	LastName      string     `json:"last_name" db:"last_name"`
	Role          Role       `json:"role" db:"role"`
	KYCStatus     KYCStatus  `json:"kyc_status" db:"kyc_status"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	EmailVerified bool       `json:"email_verified" db:"email_verified"`
	LastLogin     *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

type Role string

const (
	RoleUser     Role = "user"
	RoleAgent    Role = "agent"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

type KYCStatus string

const (
	KYCStatusPending     KYCStatus = "pending"
	KYCStatusUnderReview KYCStatus = "under_review"
	KYCStatusVerified    KYCStatus = "verified"
	KYCStatusRejected    KYCStatus = "rejected"
)

// Wallet holds a user's balance in a single currency.
type Wallet struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	UserID            uuid.UUID       `json:"user_id" db:"user_id"`
	Currency          Currency        `json:"currency" db:"currency"`
	Balance           decimal.Decimal `json:"balance" db:"balance"`
	Status            WalletStatus    `json:"status" db:"status"`
	LastTransactionAt *time.Time      `json:"last_transaction_at,omitempty" db:"last_transaction_at"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "active"
	WalletStatusSuspended WalletStatus = "suspended"
	WalletStatusClosed    WalletStatus = "closed"
)

// AgentCash tracks the physical cash an agent holds per currency.
// It backs the "agents with cash" query used for settlement delivery.
type AgentCash struct {
	AgentID   uuid.UUID       `json:"agent_id" db:"agent_id"`
	Currency  Currency        `json:"currency" db:"currency"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Transaction records a completed or failed balance movement.
type Transaction struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	Reference        string            `json:"reference" db:"reference"`
	Type             TransactionType   `json:"type" db:"type"`
	SenderID         *uuid.UUID        `json:"sender_id,omitempty" db:"sender_id"`
	ReceiverID       *uuid.UUID        `json:"receiver_id,omitempty" db:"receiver_id"`
	SenderWalletID   *uuid.UUID        `json:"sender_wallet_id,omitempty" db:"sender_wallet_id"`
	ReceiverWalletID *uuid.UUID        `json:"receiver_wallet_id,omitempty" db:"receiver_wallet_id"`
	Amount           decimal.Decimal   `json:"amount" db:"amount"`
	Currency         Currency          `json:"currency" db:"currency"`
	FeeAmount        decimal.Decimal   `json:"fee_amount" db:"fee_amount"`
	NetAmount        decimal.Decimal   `json:"net_amount" db:"net_amount"`
	Status           TransactionStatus `json:"status" db:"status"`
	Description      string            `json:"description" db:"description"`
	Metadata         Metadata          `json:"metadata" db:"metadata"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
}

type TransactionType string

const (
	TransactionTypeTransfer   TransactionType = "transfer"
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeQRPayment  TransactionType = "qr_payment"
	TransactionTypeService    TransactionType = "service"
	TransactionTypeSettlement TransactionType = "settlement"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusReversed  TransactionStatus = "reversed"
)

// Metadata is a JSON-compatible map stored in a jsonb column.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(Metadata{})
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &m)
}
