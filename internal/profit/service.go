// Package profit manages the platform's accumulated fee revenue and its
// withdrawal by admins.
package profit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type Repository interface {
	GetPool(ctx context.Context, currency domain.Currency) (*domain.PlatformProfit, error)
	GetPools(ctx context.Context) ([]*domain.PlatformProfit, error)
	Deduct(ctx context.Context, currency domain.Currency, amount decimal.Decimal) error
	CreateWithdrawal(ctx context.Context, w *domain.ProfitWithdrawal) error
	ListWithdrawals(ctx context.Context, limit, offset int) ([]*domain.ProfitWithdrawal, error)
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   Repository
	txm    TxManager
	logger logger.Logger
}

func NewService(repo Repository, txm TxManager, log logger.Logger) *Service {
	return &Service{repo: repo, txm: txm, logger: log}
}

// Overview is the admin dashboard payload: balances plus recent withdrawals.
type Overview struct {
	Pools       []*domain.PlatformProfit   `json:"pools"`
	Withdrawals []*domain.ProfitWithdrawal `json:"withdrawals"`
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	pools, err := s.repo.GetPools(ctx)
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.repo.ListWithdrawals(ctx, 50, 0)
	if err != nil {
		return nil, err
	}
	return &Overview{Pools: pools, Withdrawals: withdrawals}, nil
}

type WithdrawRequest struct {
	Amount      decimal.Decimal         `json:"amount" validate:"required,gt=0"`
	Currency    domain.Currency         `json:"currency" validate:"required"`
	Method      domain.WithdrawalMethod `json:"method" validate:"required,oneof=BANK CASH"`
	BankDetails *string                 `json:"bank_details,omitempty" validate:"omitempty,max=500"`
	Phone       *string                 `json:"phone,omitempty" validate:"omitempty,max=20"`
	Notes       string                  `json:"notes" validate:"max=500"`
}

// Withdraw moves fee revenue out of the pool. The overdraw check runs in
// SQL so concurrent withdrawals cannot exceed the accrued balance.
func (s *Service) Withdraw(ctx context.Context, adminID uuid.UUID, req *WithdrawRequest) (*domain.ProfitWithdrawal, error) {
	if !req.Currency.Valid() {
		return nil, errors.ErrUnsupportedCurrency
	}
	if !req.Method.Valid() {
		return nil, errors.ErrInvalidWithdrawalMethod
	}
	if req.Method == domain.WithdrawalMethodBank && (req.BankDetails == nil || *req.BankDetails == "") {
		return nil, errors.ErrBankDetailsRequired
	}

	amount := req.Amount.Round(req.Currency.Exponent())
	withdrawal := &domain.ProfitWithdrawal{
		ID:          uuid.New(),
		Amount:      amount,
		Currency:    req.Currency,
		Method:      req.Method,
		BankDetails: req.BankDetails,
		Phone:       req.Phone,
		Notes:       req.Notes,
		Status:      "completed",
		RequestedBy: adminID,
		CreatedAt:   time.Now(),
	}

	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Deduct(ctx, req.Currency, amount); err != nil {
			return err
		}
		return s.repo.CreateWithdrawal(ctx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Platform profit withdrawn", map[string]interface{}{
		"withdrawal_id": withdrawal.ID,
		"amount":        amount.String(),
		"currency":      req.Currency,
		"method":        req.Method,
		"admin_id":      adminID,
	})

	return withdrawal, nil
}
