// Package payment implements agent-mediated cash deposits and withdrawals
// and merchant QR payments. These flows commit immediately; only transfers
// carry an OTP step.
package payment

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
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
}

type WalletRepository interface {
	FindByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
	Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
}

type AgentCashRepository interface {
	Add(ctx context.Context, agentID uuid.UUID, currency domain.Currency, amount decimal.Decimal) error
	Subtract(ctx context.Context, agentID uuid.UUID, currency domain.Currency, amount decimal.Decimal) error
}

type ProfitRepository interface {
	Accrue(ctx context.Context, currency domain.Currency, amount decimal.Decimal) error
}

type FeeProvider interface {
	Settings(ctx context.Context, currency domain.Currency) (*domain.FeeSettings, error)
	Quote(ctx context.Context, currency domain.Currency, txType domain.TransactionType, amount decimal.Decimal) (fee, total decimal.Decimal, err error)
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error
}

type Service struct {
	users     UserRepository
	wallets   WalletRepository
	txs       TransactionRepository
	agentCash AgentCashRepository
	profits   ProfitRepository
	fees      FeeProvider
	txm       TxManager
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    logger.Logger
}

func NewService(
	users UserRepository,
	wallets WalletRepository,
	txs TransactionRepository,
	agentCash AgentCashRepository,
	profits ProfitRepository,
	feeProvider FeeProvider,
	txm TxManager,
	notifier Notifier,
	m *metrics.Metrics,
	log logger.Logger,
) *Service {
	return &Service{
		users:     users,
		wallets:   wallets,
		txs:       txs,
		agentCash: agentCash,
		profits:   profits,
		fees:      feeProvider,
		txm:       txm,
		notifier:  notifier,
		metrics:   m,
		logger:    log,
	}
}

type DepositRequest struct {
	UserPhone string          `json:"user_phone" validate:"required,syrian_phone"`
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Currency  domain.Currency `json:"currency" validate:"required"`
}

// Deposit records a cash-in at an agent: the user hands over cash, their
// wallet is credited net of the deposit fee, and the agent's cash position
// grows by the full amount. The agent's commission cut of the fee lands in
// their wallet; the remainder is platform revenue.
func (s *Service) Deposit(ctx context.Context, agentID uuid.UUID, req *DepositRequest) (*domain.Transaction, error) {
	user, userWallet, err := s.resolveCustomer(ctx, req.UserPhone, req.Currency)
	if err != nil {
		return nil, err
	}
	if user.ID == agentID {
		return nil, errors.ErrSelfTransfer
	}

	settings, err := s.fees.Settings(ctx, req.Currency)
	if err != nil {
		return nil, err
	}
	fee := fees.Compute(req.Amount, settings.DepositFeePercent, settings.DepositFeeFixed, req.Currency)
	commission := fees.Compute(fee, settings.AgentCommissionPercent, decimal.Zero, req.Currency)
	net := req.Amount.Sub(fee)
	if !net.IsPositive() {
		return nil, errors.ErrInsufficientBalance
	}

	agentWallet, err := s.wallets.FindByUserAndCurrency(ctx, agentID, req.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx := &domain.Transaction{
		ID:               uuid.New(),
		Reference:        paymentReference("DEP"),
		Type:             domain.TransactionTypeDeposit,
		SenderID:         &agentID,
		ReceiverID:       &user.ID,
		SenderWalletID:   &agentWallet.ID,
		ReceiverWalletID: &userWallet.ID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		FeeAmount:        fee,
		NetAmount:        net,
		Status:           domain.TransactionStatusCompleted,
		Description:      fmt.Sprintf("Cash deposit via agent %s", agentID),
		Metadata:         domain.Metadata{"agent_commission": commission.String()},
		CreatedAt:        now,
		CompletedAt:      &now,
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.wallets.Credit(ctx, userWallet.ID, net); err != nil {
			return err
		}
		if err := s.agentCash.Add(ctx, agentID, req.Currency, req.Amount); err != nil {
			return err
		}
		if commission.IsPositive() {
			if err := s.wallets.Credit(ctx, agentWallet.ID, commission); err != nil {
				return err
			}
		}
		if platformCut := fee.Sub(commission); platformCut.IsPositive() {
			if err := s.profits.Accrue(ctx, req.Currency, platformCut); err != nil {
				return err
			}
		}
		return s.txs.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.recordFeeRevenue(req.Currency, fee.Sub(commission))
	s.notifyAsync(user.ID, "DEPOSIT_RECEIVED", map[string]interface{}{
		"amount":   net.String(),
		"currency": req.Currency,
		"fee":      fee.String(),
	})

	s.logger.Info("Deposit completed", map[string]interface{}{
		"transaction_id": tx.ID,
		"agent_id":       agentID,
		"user_id":        user.ID,
		"amount":         req.Amount.String(),
		"fee":            fee.String(),
	})

	return tx, nil
}

type WithdrawalRequest struct {
	UserPhone string          `json:"user_phone" validate:"required,syrian_phone"`
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Currency  domain.Currency `json:"currency" validate:"required"`
}

// Withdraw records a cash-out at an agent: the user's wallet is debited
// amount plus fee, the agent hands over cash and their position shrinks by
// the amount paid out.
func (s *Service) Withdraw(ctx context.Context, agentID uuid.UUID, req *WithdrawalRequest) (*domain.Transaction, error) {
	user, userWallet, err := s.resolveCustomer(ctx, req.UserPhone, req.Currency)
	if err != nil {
		return nil, err
	}
	if user.ID == agentID {
		return nil, errors.ErrSelfTransfer
	}

	settings, err := s.fees.Settings(ctx, req.Currency)
	if err != nil {
		return nil, err
	}
	fee := fees.Compute(req.Amount, settings.WithdrawalFeePercent, settings.WithdrawalFeeFixed, req.Currency)
	commission := fees.Compute(fee, settings.AgentCommissionPercent, decimal.Zero, req.Currency)
	total := req.Amount.Add(fee)
	if userWallet.Balance.LessThan(total) {
		return nil, errors.ErrInsufficientBalance
	}

	agentWallet, err := s.wallets.FindByUserAndCurrency(ctx, agentID, req.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx := &domain.Transaction{
		ID:               uuid.New(),
		Reference:        paymentReference("WDR"),
		Type:             domain.TransactionTypeWithdrawal,
		SenderID:         &user.ID,
		ReceiverID:       &agentID,
		SenderWalletID:   &userWallet.ID,
		ReceiverWalletID: &agentWallet.ID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		FeeAmount:        fee,
		NetAmount:        req.Amount,
		Status:           domain.TransactionStatusCompleted,
		Description:      fmt.Sprintf("Cash withdrawal via agent %s", agentID),
		Metadata:         domain.Metadata{"agent_commission": commission.String()},
		CreatedAt:        now,
		CompletedAt:      &now,
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.wallets.Debit(ctx, userWallet.ID, total); err != nil {
			return err
		}
		if err := s.agentCash.Subtract(ctx, agentID, req.Currency, req.Amount); err != nil {
			return err
		}
		if commission.IsPositive() {
			if err := s.wallets.Credit(ctx, agentWallet.ID, commission); err != nil {
				return err
			}
		}
		if platformCut := fee.Sub(commission); platformCut.IsPositive() {
			if err := s.profits.Accrue(ctx, req.Currency, platformCut); err != nil {
				return err
			}
		}
		return s.txs.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.recordFeeRevenue(req.Currency, fee.Sub(commission))
	s.notifyAsync(user.ID, "WITHDRAWAL_COMPLETED", map[string]interface{}{
		"amount":   req.Amount.String(),
		"currency": req.Currency,
		"fee":      fee.String(),
	})

	s.logger.Info("Withdrawal completed", map[string]interface{}{
		"transaction_id": tx.ID,
		"agent_id":       agentID,
		"user_id":        user.ID,
		"amount":         req.Amount.String(),
		"fee":            fee.String(),
	})

	return tx, nil
}

type QRPaymentRequest struct {
	MerchantID uuid.UUID       `json:"merchant_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Currency   domain.Currency `json:"currency" validate:"required"`
	Reference  string          `json:"reference" validate:"max=100"`
}

// PayQR settles a scan-to-pay purchase: the payer is debited amount plus
// fee, the merchant receives the full amount, the fee is platform revenue.
func (s *Service) PayQR(ctx context.Context, payerID uuid.UUID, req *QRPaymentRequest) (*domain.Transaction, error) {
	if !req.Currency.Valid() {
		return nil, errors.ErrUnsupportedCurrency
	}
	if req.MerchantID == payerID {
		return nil, errors.ErrSelfTransfer
	}

	merchant, err := s.users.FindByID(ctx, req.MerchantID)
	if err != nil {
		return nil, errors.ErrRecipientNotFound
	}
	if merchant.Role != domain.RoleMerchant || !merchant.IsActive {
		return nil, errors.ErrRecipientNotFound
	}

	payerWallet, err := s.wallets.FindByUserAndCurrency(ctx, payerID, req.Currency)
	if err != nil {
		return nil, err
	}
	merchantWallet, err := s.wallets.FindByUserAndCurrency(ctx, merchant.ID, req.Currency)
	if err != nil {
		return nil, err
	}

	fee, total, err := s.fees.Quote(ctx, req.Currency, domain.TransactionTypeQRPayment, req.Amount)
	if err != nil {
		return nil, err
	}
	if payerWallet.Balance.LessThan(total) {
		return nil, errors.ErrInsufficientBalance
	}

	now := time.Now()
	tx := &domain.Transaction{
		ID:               uuid.New(),
		Reference:        paymentReference("QRP"),
		Type:             domain.TransactionTypeQRPayment,
		SenderID:         &payerID,
		ReceiverID:       &merchant.ID,
		SenderWalletID:   &payerWallet.ID,
		ReceiverWalletID: &merchantWallet.ID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		FeeAmount:        fee,
		NetAmount:        req.Amount,
		Status:           domain.TransactionStatusCompleted,
		Description:      fmt.Sprintf("QR payment to %s %s", merchant.FirstName, merchant.LastName),
		Metadata:         domain.Metadata{"merchant_reference": req.Reference},
		CreatedAt:        now,
		CompletedAt:      &now,
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.wallets.Debit(ctx, payerWallet.ID, total); err != nil {
			return err
		}
		if err := s.wallets.Credit(ctx, merchantWallet.ID, req.Amount); err != nil {
			return err
		}
		if fee.IsPositive() {
			if err := s.profits.Accrue(ctx, req.Currency, fee); err != nil {
				return err
			}
		}
		return s.txs.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.recordFeeRevenue(req.Currency, fee)
	s.notifyAsync(merchant.ID, "QR_PAYMENT_RECEIVED", map[string]interface{}{
		"amount":   req.Amount.String(),
		"currency": req.Currency,
	})

	s.logger.Info("QR payment completed", map[string]interface{}{
		"transaction_id": tx.ID,
		"payer_id":       payerID,
		"merchant_id":    merchant.ID,
		"amount":         req.Amount.String(),
		"fee":            fee.String(),
	})

	return tx, nil
}

// resolveCustomer looks up the cash counterparty by phone and their wallet.
func (s *Service) resolveCustomer(ctx context.Context, phone string, currency domain.Currency) (*domain.User, *domain.Wallet, error) {
	if !currency.Valid() {
		return nil, nil, errors.ErrUnsupportedCurrency
	}
	user, err := s.users.FindByPhone(ctx, validator.NormalizePhone(phone))
	if err != nil {
		return nil, nil, errors.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, nil, errors.ErrUserInactive
	}
	wallet, err := s.wallets.FindByUserAndCurrency(ctx, user.ID, currency)
	if err != nil {
		return nil, nil, err
	}
	return user, wallet, nil
}

func (s *Service) recordFeeRevenue(currency domain.Currency, amount decimal.Decimal) {
	if s.metrics.FeeRevenue != nil && amount.IsPositive() {
		v, _ := amount.Float64()
		s.metrics.FeeRevenue.WithLabelValues(string(currency)).Add(v)
	}
}

func (s *Service) notifyAsync(userID uuid.UUID, eventType string, data map[string]interface{}) {
	go func() {
		_ = s.notifier.Notify(context.Background(), userID, eventType, data)
	}()
}

func paymentReference(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().Unix(), uuid.NewString()[:8])
}
