package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementType distinguishes the three agent reconciliation flows.
type SettlementType string

const (
	// SettlementCashToCredit: the agent hands collected cash to the
	// platform and receives digital credit net of commissions.
	SettlementCashToCredit SettlementType = "CASH_TO_CREDIT"
	// SettlementCreditRequest: the agent is advanced digital credit,
	// owed back in cash later.
	SettlementCreditRequest SettlementType = "CREDIT_REQUEST"
	// SettlementCashRequest: the agent converts digital credit into
	// physical cash, delivered by the platform, an admin, or a peer agent.
	SettlementCashRequest SettlementType = "CASH_REQUEST"
)

func (t SettlementType) Valid() bool {
	switch t {
	case SettlementCashToCredit, SettlementCreditRequest, SettlementCashRequest:
		return true
	}
	return false
}

type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "PENDING"
	SettlementStatusApproved  SettlementStatus = "APPROVED"
	SettlementStatusCompleted SettlementStatus = "COMPLETED"
	SettlementStatusRejected  SettlementStatus = "REJECTED"
)

type DeliveryMethod string

const (
	DeliveryFromPlatform DeliveryMethod = "FROM_PLATFORM"
	DeliveryFromAdmin    DeliveryMethod = "FROM_ADMIN"
	DeliveryFromAgent    DeliveryMethod = "FROM_AGENT"
)

func (m DeliveryMethod) Valid() bool {
	switch m {
	case DeliveryFromPlatform, DeliveryFromAdmin, DeliveryFromAgent:
		return true
	}
	return false
}

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusConfirmed DeliveryStatus = "CONFIRMED"
)

// Settlement is a reconciliation between an agent's cash position and
// platform-issued credit. Amount fields are populated per type:
//
//	CASH_TO_CREDIT: CashCollected, PlatformShare, AgentShare, AmountDue
//	CREDIT_REQUEST: CreditGiven
//	CASH_REQUEST:   CashToReceive, CreditDeducted, delivery fields
//
// Invariant for CASH_TO_CREDIT:
// AmountDue = CashCollected - PlatformShare - AgentShare.
type Settlement struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	SettlementNumber string           `json:"settlement_number" db:"settlement_number"`
	AgentID          uuid.UUID        `json:"agent_id" db:"agent_id"`
	Type             SettlementType   `json:"type" db:"type"`
	RequestedAmount  decimal.Decimal  `json:"requested_amount" db:"requested_amount"`
	Currency         Currency         `json:"currency" db:"currency"`
	CashCollected    decimal.Decimal  `json:"cash_collected" db:"cash_collected"`
	PlatformShare    decimal.Decimal  `json:"platform_share" db:"platform_share"`
	AgentShare       decimal.Decimal  `json:"agent_share" db:"agent_share"`
	AmountDue        decimal.Decimal  `json:"amount_due" db:"amount_due"`
	CreditGiven      decimal.Decimal  `json:"credit_given" db:"credit_given"`
	CashToReceive    decimal.Decimal  `json:"cash_to_receive" db:"cash_to_receive"`
	CreditDeducted   decimal.Decimal  `json:"credit_deducted" db:"credit_deducted"`
	DeliveryMethod   *DeliveryMethod  `json:"delivery_method,omitempty" db:"delivery_method"`
	DeliveryStatus   *DeliveryStatus  `json:"delivery_status,omitempty" db:"delivery_status"`
	SourceAgentID    *uuid.UUID       `json:"source_agent_id,omitempty" db:"source_agent_id"`
	Status           SettlementStatus `json:"status" db:"status"`
	Notes            string           `json:"notes" db:"notes"`
	ReviewedBy       *uuid.UUID       `json:"reviewed_by,omitempty" db:"reviewed_by"`
	Version          int              `json:"version" db:"version"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
	ReviewedAt       *time.Time       `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty" db:"completed_at"`

	// Agent identity joined from users on reads; never written back.
	AgentName        string  `json:"agent_name,omitempty" db:"agent_name"`
	AgentPhone       string  `json:"agent_phone,omitempty" db:"agent_phone"`
	SourceAgentName  *string `json:"source_agent_name,omitempty" db:"source_agent_name"`
	SourceAgentPhone *string `json:"source_agent_phone,omitempty" db:"source_agent_phone"`
}

// AgentCashPosition is an agent plus their current cash holding, used when
// an admin picks a cash source for a CASH_REQUEST delivery.
type AgentCashPosition struct {
	AgentID    uuid.UUID       `json:"agent_id" db:"agent_id"`
	FirstName  string          `json:"first_name" db:"first_name"`
	LastName   string          `json:"last_name" db:"last_name"`
	Phone      string          `json:"phone" db:"phone"`
	Currency   Currency        `json:"currency" db:"currency"`
	CashAmount decimal.Decimal `json:"cash_amount" db:"cash_amount"`
}
