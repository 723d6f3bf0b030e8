// Package settlement implements agent cash/credit reconciliation: creation
// of the three settlement types and the admin approval workflow, including
// cash delivery logistics for CASH_REQUEST.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/fees"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/metrics"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type Repository interface {
	Create(ctx context.Context, s *domain.Settlement) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Settlement, error)
	UpdateVersioned(ctx context.Context, s *domain.Settlement) error
	FindAll(ctx context.Context, limit, offset int) ([]*domain.Settlement, error)
	FindByAgentID(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*domain.Settlement, error)
	AgentsWithCash(ctx context.Context, currency domain.Currency, minAmount decimal.Decimal) ([]*domain.AgentCashPosition, error)
}

type WalletRepository interface {
	FindByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
	Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type AgentCashRepository interface {
	Get(ctx context.Context, agentID uuid.UUID, currency domain.Currency) (*domain.AgentCash, error)
	Add(ctx context.Context, agentID uuid.UUID, currency domain.Currency, amount decimal.Decimal) error
	Subtract(ctx context.Context, agentID uuid.UUID, currency domain.Currency, amount decimal.Decimal) error
}

type ProfitRepository interface {
	Accrue(ctx context.Context, currency domain.Currency, amount decimal.Decimal) error
}

type FeeSettingsProvider interface {
	Settings(ctx context.Context, currency domain.Currency) (*domain.FeeSettings, error)
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error
}

type Service struct {
	repo      Repository
	wallets   WalletRepository
	agentCash AgentCashRepository
	profits   ProfitRepository
	fees      FeeSettingsProvider
	txm       TxManager
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    logger.Logger
}

func NewService(
	repo Repository,
	wallets WalletRepository,
	agentCash AgentCashRepository,
	profits ProfitRepository,
	feeSettings FeeSettingsProvider,
	txm TxManager,
	notifier Notifier,
	m *metrics.Metrics,
	log logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		wallets:   wallets,
		agentCash: agentCash,
		profits:   profits,
		fees:      feeSettings,
		txm:       txm,
		notifier:  notifier,
		metrics:   m,
		logger:    log,
	}
}

type CreateRequest struct {
	Type     domain.SettlementType `json:"type" validate:"required"`
	Amount   decimal.Decimal       `json:"amount" validate:"required,gt=0"`
	Currency domain.Currency       `json:"currency" validate:"required"`
	Notes    string                `json:"notes" validate:"max=500"`
}

// Create opens a PENDING settlement for the agent. The commission split is
// computed server-side from the current fee settings so a stale client
// cannot influence the math.
func (s *Service) Create(ctx context.Context, agentID uuid.UUID, req *CreateRequest) (*domain.Settlement, error) {
	if !req.Type.Valid() {
		return nil, errors.ErrInvalidSettlementAction
	}
	if !req.Currency.Valid() {
		return nil, errors.ErrUnsupportedCurrency
	}

	settings, err := s.fees.Settings(ctx, req.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	settlement := &domain.Settlement{
		ID:               uuid.New(),
		SettlementNumber: settlementNumber(),
		AgentID:          agentID,
		Type:             req.Type,
		RequestedAmount:  req.Amount,
		Currency:         req.Currency,
		Status:           domain.SettlementStatusPending,
		Notes:            req.Notes,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	switch req.Type {
	case domain.SettlementCashToCredit:
		settlement.CashCollected = req.Amount
		settlement.PlatformShare = fees.Compute(req.Amount, settings.SettlementPlatformCommission, decimal.Zero, req.Currency)
		settlement.AgentShare = fees.Compute(req.Amount, settings.SettlementAgentCommission, decimal.Zero, req.Currency)
		// AmountDue is derived by subtraction so the reconciliation
		// invariant holds to the cent.
		settlement.AmountDue = settlement.CashCollected.Sub(settlement.PlatformShare).Sub(settlement.AgentShare)

	case domain.SettlementCreditRequest:
		settlement.CreditGiven = req.Amount

	case domain.SettlementCashRequest:
		settlement.CashToReceive = req.Amount
		settlement.CreditDeducted = req.Amount
		// The wallet is only debited at approval, but reject requests
		// the agent clearly cannot cover.
		wallet, err := s.wallets.FindByUserAndCurrency(ctx, agentID, req.Currency)
		if err != nil {
			return nil, err
		}
		if wallet.Balance.LessThan(req.Amount) {
			return nil, errors.ErrInsufficientBalance
		}
	}

	if err := s.repo.Create(ctx, settlement); err != nil {
		return nil, err
	}

	s.logger.Info("Settlement created", map[string]interface{}{
		"settlement_id":     settlement.ID,
		"settlement_number": settlement.SettlementNumber,
		"agent_id":          agentID,
		"type":              settlement.Type,
		"amount":            req.Amount.String(),
	})

	return settlement, nil
}

// Action values accepted by the admin endpoint.
const (
	ActionApprove         = "approve"
	ActionReject          = "reject"
	ActionConfirmDelivery = "confirm_delivery"
)

type ActionRequest struct {
	SettlementID   uuid.UUID              `json:"settlement_id" validate:"required"`
	Action         string                 `json:"action" validate:"required,oneof=approve reject confirm_delivery"`
	DeliveryMethod *domain.DeliveryMethod `json:"delivery_method,omitempty"`
	SourceAgentID  *uuid.UUID             `json:"source_agent_id,omitempty"`
	Notes          string                 `json:"notes" validate:"max=500"`
}

// Apply runs one admin transition. Balance effects and the versioned status
// update share a database transaction, so a concurrent admin losing the
// version race rolls everything back and sees ErrVersionConflict.
func (s *Service) Apply(ctx context.Context, adminID uuid.UUID, req *ActionRequest) (*domain.Settlement, error) {
	settlement, err := s.repo.FindByID(ctx, req.SettlementID)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case ActionApprove:
		err = s.approve(ctx, adminID, settlement, req)
	case ActionReject:
		err = s.reject(ctx, adminID, settlement, req)
	case ActionConfirmDelivery:
		err = s.confirmDelivery(ctx, adminID, settlement)
	default:
		return nil, errors.ErrInvalidSettlementAction
	}
	if err != nil {
		return nil, err
	}

	s.metrics.SettlementActions.WithLabelValues(req.Action).Inc()

	go func() {
		_ = s.notifier.Notify(context.Background(), settlement.AgentID, "SETTLEMENT_DECIDED", map[string]interface{}{
			"settlement_number": settlement.SettlementNumber,
			"status":            settlement.Status,
			"action":            req.Action,
		})
	}()

	s.logger.Info("Settlement action applied", map[string]interface{}{
		"settlement_id": settlement.ID,
		"action":        req.Action,
		"status":        settlement.Status,
		"admin_id":      adminID,
	})

	return settlement, nil
}

func (s *Service) approve(ctx context.Context, adminID uuid.UUID, settlement *domain.Settlement, req *ActionRequest) error {
	if settlement.Status != domain.SettlementStatusPending {
		return errors.ErrSettlementNotPending
	}

	if settlement.Type == domain.SettlementCashRequest {
		if req.DeliveryMethod == nil || !req.DeliveryMethod.Valid() {
			return errors.ErrDeliveryMethodRequired
		}
		if *req.DeliveryMethod == domain.DeliveryFromAgent {
			if req.SourceAgentID == nil {
				return errors.ErrSourceAgentRequired
			}
			cash, err := s.agentCash.Get(ctx, *req.SourceAgentID, settlement.Currency)
			if err != nil {
				return err
			}
			if cash.Amount.LessThan(settlement.CashToReceive) {
				return errors.ErrSourceAgentInsufficientCash
			}
		}
	}

	now := time.Now()
	settlement.ReviewedBy = &adminID
	settlement.ReviewedAt = &now
	if req.Notes != "" {
		settlement.Notes = req.Notes
	}

	return s.txm.WithinTx(ctx, func(ctx context.Context) error {
		wallet, err := s.wallets.FindByUserAndCurrency(ctx, settlement.AgentID, settlement.Currency)
		if err != nil {
			return err
		}

		switch settlement.Type {
		case domain.SettlementCashToCredit:
			// The agent hands over the collected cash minus their own
			// commission and receives the net amount as credit. The
			// platform's cut becomes fee revenue.
			handover := settlement.CashCollected.Sub(settlement.AgentShare)
			if err := s.agentCash.Subtract(ctx, settlement.AgentID, settlement.Currency, handover); err != nil {
				return err
			}
			if err := s.wallets.Credit(ctx, wallet.ID, settlement.AmountDue); err != nil {
				return err
			}
			if err := s.profits.Accrue(ctx, settlement.Currency, settlement.PlatformShare); err != nil {
				return err
			}
			settlement.Status = domain.SettlementStatusCompleted
			settlement.CompletedAt = &now

		case domain.SettlementCreditRequest:
			if err := s.wallets.Credit(ctx, wallet.ID, settlement.CreditGiven); err != nil {
				return err
			}
			settlement.Status = domain.SettlementStatusCompleted
			settlement.CompletedAt = &now

		case domain.SettlementCashRequest:
			if err := s.wallets.Debit(ctx, wallet.ID, settlement.CreditDeducted); err != nil {
				return err
			}
			settlement.DeliveryMethod = req.DeliveryMethod
			settlement.SourceAgentID = req.SourceAgentID
			pending := domain.DeliveryStatusPending
			settlement.DeliveryStatus = &pending
			settlement.Status = domain.SettlementStatusApproved
		}

		return s.repo.UpdateVersioned(ctx, settlement)
	})
}

func (s *Service) reject(ctx context.Context, adminID uuid.UUID, settlement *domain.Settlement, req *ActionRequest) error {
	if settlement.Status != domain.SettlementStatusPending {
		return errors.ErrSettlementNotPending
	}

	now := time.Now()
	settlement.Status = domain.SettlementStatusRejected
	settlement.ReviewedBy = &adminID
	settlement.ReviewedAt = &now
	if req.Notes != "" {
		settlement.Notes = req.Notes
	}

	return s.txm.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.UpdateVersioned(ctx, settlement)
	})
}

func (s *Service) confirmDelivery(ctx context.Context, adminID uuid.UUID, settlement *domain.Settlement) error {
	if settlement.Type != domain.SettlementCashRequest ||
		settlement.Status != domain.SettlementStatusApproved ||
		settlement.DeliveryStatus == nil ||
		*settlement.DeliveryStatus != domain.DeliveryStatusPending {
		return errors.ErrDeliveryNotPending
	}

	now := time.Now()
	confirmed := domain.DeliveryStatusConfirmed
	settlement.DeliveryStatus = &confirmed
	settlement.Status = domain.SettlementStatusCompleted
	settlement.CompletedAt = &now
	settlement.ReviewedBy = &adminID

	return s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if settlement.DeliveryMethod != nil && *settlement.DeliveryMethod == domain.DeliveryFromAgent {
			if err := s.agentCash.Subtract(ctx, *settlement.SourceAgentID, settlement.Currency, settlement.CashToReceive); err != nil {
				return err
			}
		}
		if err := s.agentCash.Add(ctx, settlement.AgentID, settlement.Currency, settlement.CashToReceive); err != nil {
			return err
		}
		return s.repo.UpdateVersioned(ctx, settlement)
	})
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*domain.Settlement, error) {
	return s.repo.FindAll(ctx, limit, offset)
}

func (s *Service) ListByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*domain.Settlement, error) {
	return s.repo.FindByAgentID(ctx, agentID, limit, offset)
}

// AgentsWithCash lists agents able to act as the cash source for a
// FROM_AGENT delivery of at least minAmount.
func (s *Service) AgentsWithCash(ctx context.Context, currency domain.Currency, minAmount decimal.Decimal) ([]*domain.AgentCashPosition, error) {
	if !currency.Valid() {
		return nil, errors.ErrUnsupportedCurrency
	}
	return s.repo.AgentsWithCash(ctx, currency, minAmount)
}

func settlementNumber() string {
	return fmt.Sprintf("STL-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}
