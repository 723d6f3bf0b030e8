// Package transfer implements the OTP-gated peer-to-peer transfer flow:
// initiate (balance check + code issue) then confirm (code check + atomic
// balance movement).
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/metrics"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/config"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
}

type WalletRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	FindByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
	Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
}

type ProfitRepository interface {
	Accrue(ctx context.Context, currency domain.Currency, amount decimal.Decimal) error
}

type FeeQuoter interface {
	Quote(ctx context.Context, currency domain.Currency, txType domain.TransactionType, amount decimal.Decimal) (fee, total decimal.Decimal, err error)
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error
}

type Service struct {
	users    UserRepository
	wallets  WalletRepository
	txs      TransactionRepository
	profits  ProfitRepository
	fees     FeeQuoter
	txm      TxManager
	store    RequestStore
	notifier Notifier
	metrics  *metrics.Metrics
	cfg      config.TransferConfig
	logger   logger.Logger
}

func NewService(
	users UserRepository,
	wallets WalletRepository,
	txs TransactionRepository,
	profits ProfitRepository,
	fees FeeQuoter,
	txm TxManager,
	store RequestStore,
	notifier Notifier,
	m *metrics.Metrics,
	cfg config.TransferConfig,
	log logger.Logger,
) *Service {
	return &Service{
		users:    users,
		wallets:  wallets,
		txs:      txs,
		profits:  profits,
		fees:     fees,
		txm:      txm,
		store:    store,
		notifier: notifier,
		metrics:  m,
		cfg:      cfg,
		logger:   log,
	}
}

type InitiateRequest struct {
	RecipientPhone string          `json:"recipient_phone" validate:"required,syrian_phone"`
	Amount         decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Currency       domain.Currency `json:"currency" validate:"required"`
}

type InitiateResponse struct {
	TransferRequestID string `json:"transfer_request_id"`
	ExpiresIn         int    `json:"expires_in"`
}

// Initiate validates the transfer, issues a one-time code out-of-band, and
// parks the request in the store for the OTP window. No balances move yet.
func (s *Service) Initiate(ctx context.Context, senderID uuid.UUID, req *InitiateRequest) (*InitiateResponse, error) {
	if !req.Currency.Valid() {
		return nil, errors.ErrUnsupportedCurrency
	}

	recipient, err := s.users.FindByPhone(ctx, validator.NormalizePhone(req.RecipientPhone))
	if err != nil {
		return nil, errors.ErrRecipientNotFound
	}
	if recipient.ID == senderID {
		return nil, errors.ErrSelfTransfer
	}
	if !recipient.IsActive {
		return nil, errors.ErrRecipientNotFound
	}

	senderWallet, err := s.wallets.FindByUserAndCurrency(ctx, senderID, req.Currency)
	if err != nil {
		return nil, err
	}
	recipientWallet, err := s.wallets.FindByUserAndCurrency(ctx, recipient.ID, req.Currency)
	if err != nil {
		return nil, err
	}

	fee, total, err := s.fees.Quote(ctx, req.Currency, domain.TransactionTypeTransfer, req.Amount)
	if err != nil {
		return nil, err
	}
	if senderWallet.Balance.LessThan(total) {
		return nil, errors.ErrInsufficientBalance
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate otp secret")
	}
	code, err := generateCode(secret, s.cfg.OTPDigits)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate otp code")
	}

	request := &Request{
		ID:                uuid.NewString(),
		SenderID:          senderID,
		SenderWalletID:    senderWallet.ID,
		RecipientID:       recipient.ID,
		RecipientWalletID: recipientWallet.ID,
		RecipientPhone:    recipient.Phone,
		Amount:            req.Amount,
		Fee:               fee,
		Currency:          req.Currency,
		OTPSecret:         secret,
		RemainingAttempts: s.cfg.OTPAttempts,
		ExpiresAt:         time.Now().Add(s.cfg.OTPExpiry),
	}

	if err := s.store.Save(ctx, request, s.cfg.OTPExpiry); err != nil {
		return nil, errors.Wrap(err, "failed to store transfer request")
	}

	s.deliverCode(senderID, code, request)
	s.metrics.TransfersInitiated.Inc()

	s.logger.Info("Transfer initiated", map[string]interface{}{
		"transfer_request_id": request.ID,
		"sender_id":           senderID,
		"amount":              req.Amount.String(),
		"currency":            req.Currency,
	})

	return &InitiateResponse{
		TransferRequestID: request.ID,
		ExpiresIn:         int(s.cfg.OTPExpiry.Seconds()),
	}, nil
}

type ConfirmRequest struct {
	TransferRequestID string `json:"transfer_request_id" validate:"required,uuid4"`
	OTP               string `json:"otp" validate:"required,numeric"`
}

type ConfirmResponse struct {
	Transaction *domain.Transaction `json:"transaction"`
}

// Confirm checks the one-time code and, on success, commits the transfer in
// one database transaction: debit sender (amount+fee), credit recipient,
// record the transaction, accrue the fee. The returned int is the number of
// attempts left, meaningful when err is ErrOTPMismatch.
func (s *Service) Confirm(ctx context.Context, senderID uuid.UUID, req *ConfirmRequest) (*ConfirmResponse, int, error) {
	request, err := s.store.Load(ctx, req.TransferRequestID)
	if err != nil {
		return nil, 0, err
	}
	if request.SenderID != senderID {
		// Do not reveal that another user's request exists.
		return nil, 0, errors.ErrTransferRequestNotFound
	}
	if time.Now().After(request.ExpiresAt) {
		_ = s.store.Delete(ctx, request.ID)
		return nil, 0, errors.ErrTransferRequestNotFound
	}

	if !validateCode(req.OTP, request.OTPSecret, s.cfg.OTPDigits) {
		s.metrics.OTPFailures.Inc()
		request.RemainingAttempts--
		if request.RemainingAttempts <= 0 {
			_ = s.store.Delete(ctx, request.ID)
			return nil, 0, errors.ErrOTPAttemptsExhausted
		}
		if err := s.store.Update(ctx, request); err != nil {
			return nil, 0, err
		}
		return nil, request.RemainingAttempts, errors.ErrOTPMismatch
	}

	total := request.Amount.Add(request.Fee)
	now := time.Now()
	tx := &domain.Transaction{
		ID:               uuid.New(),
		Reference:        transferReference(),
		Type:             domain.TransactionTypeTransfer,
		SenderID:         &request.SenderID,
		ReceiverID:       &request.RecipientID,
		SenderWalletID:   &request.SenderWalletID,
		ReceiverWalletID: &request.RecipientWalletID,
		Amount:           request.Amount,
		Currency:         request.Currency,
		FeeAmount:        request.Fee,
		NetAmount:        request.Amount,
		Status:           domain.TransactionStatusCompleted,
		Description:      fmt.Sprintf("Transfer to %s", request.RecipientPhone),
		Metadata:         domain.Metadata{"transfer_request_id": request.ID},
		CreatedAt:        now,
		CompletedAt:      &now,
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.wallets.Debit(ctx, request.SenderWalletID, total); err != nil {
			return err
		}
		if err := s.wallets.Credit(ctx, request.RecipientWalletID, request.Amount); err != nil {
			return err
		}
		if err := s.txs.Create(ctx, tx); err != nil {
			return err
		}
		if request.Fee.IsPositive() {
			return s.profits.Accrue(ctx, request.Currency, request.Fee)
		}
		return nil
	})
	if err != nil {
		return nil, request.RemainingAttempts, err
	}

	// The request is consumed whether or not cleanup succeeds; a leftover
	// key simply expires with its TTL.
	_ = s.store.Delete(ctx, request.ID)

	s.metrics.TransfersConfirmed.Inc()
	if s.metrics.FeeRevenue != nil && request.Fee.IsPositive() {
		fee, _ := request.Fee.Float64()
		s.metrics.FeeRevenue.WithLabelValues(string(request.Currency)).Add(fee)
	}

	go func() {
		bg := context.Background()
		_ = s.notifier.Notify(bg, request.RecipientID, "TRANSFER_RECEIVED", map[string]interface{}{
			"amount":   request.Amount.String(),
			"currency": request.Currency,
		})
		_ = s.notifier.Notify(bg, request.SenderID, "TRANSFER_SENT", map[string]interface{}{
			"amount":   request.Amount.String(),
			"currency": request.Currency,
			"fee":      request.Fee.String(),
		})
	}()

	s.logger.Info("Transfer confirmed", map[string]interface{}{
		"transfer_request_id": request.ID,
		"transaction_id":      tx.ID,
		"amount":              request.Amount.String(),
		"fee":                 request.Fee.String(),
	})

	return &ConfirmResponse{Transaction: tx}, 0, nil
}

type ResendRequest struct {
	TransferRequestID string `json:"transfer_request_id" validate:"required,uuid4"`
}

// Resend issues a fresh code for an existing request. The attempt budget is
// not replenished; the OTP window restarts.
func (s *Service) Resend(ctx context.Context, senderID uuid.UUID, req *ResendRequest) (*InitiateResponse, error) {
	request, err := s.store.Load(ctx, req.TransferRequestID)
	if err != nil {
		return nil, err
	}
	if request.SenderID != senderID {
		return nil, errors.ErrTransferRequestNotFound
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate otp secret")
	}
	code, err := generateCode(secret, s.cfg.OTPDigits)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate otp code")
	}

	request.OTPSecret = secret
	request.ExpiresAt = time.Now().Add(s.cfg.OTPExpiry)
	if err := s.store.Save(ctx, request, s.cfg.OTPExpiry); err != nil {
		return nil, errors.Wrap(err, "failed to store transfer request")
	}

	s.deliverCode(senderID, code, request)

	return &InitiateResponse{
		TransferRequestID: request.ID,
		ExpiresIn:         int(s.cfg.OTPExpiry.Seconds()),
	}, nil
}

func (s *Service) deliverCode(senderID uuid.UUID, code string, request *Request) {
	go func() {
		_ = s.notifier.Notify(context.Background(), senderID, "TRANSFER_OTP", map[string]interface{}{
			"code":                code,
			"transfer_request_id": request.ID,
			"amount":              request.Amount.String(),
			"currency":            request.Currency,
			"expires_at":          request.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}()
}

func transferReference() string {
	return fmt.Sprintf("TRF-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}
