// Package fees implements the platform fee calculator and fee settings admin.
package fees

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

const (
	settingsCacheKey = "fees:settings:"
	settingsCacheTTL = 5 * time.Minute
)

var hundred = decimal.NewFromInt(100)

// Compute applies the fee contract: amount*percent/100 + fixed, rounded
// half-up at the currency's exponent (2 for USD, 0 for SYP).
func Compute(amount, percent, fixed decimal.Decimal, currency domain.Currency) decimal.Decimal {
	fee := amount.Mul(percent).Div(hundred).Add(fixed)
	return fee.Round(currency.Exponent())
}

type Repository interface {
	GetByCurrency(ctx context.Context, currency domain.Currency) (*domain.FeeSettings, error)
	Upsert(ctx context.Context, settings *domain.FeeSettings) error
}

// Cache is the subset of the Redis wrapper the fee service needs.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Service struct {
	repo   Repository
	cache  Cache
	logger logger.Logger
}

func NewService(repo Repository, cache Cache, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// Settings returns the fee schedule for a currency, served from cache when warm.
func (s *Service) Settings(ctx context.Context, currency domain.Currency) (*domain.FeeSettings, error) {
	if !currency.Valid() {
		return nil, errors.ErrUnsupportedCurrency
	}

	if s.cache != nil {
		cached := &domain.FeeSettings{}
		if err := s.cache.Get(ctx, settingsCacheKey+string(currency), cached); err == nil {
			return cached, nil
		}
	}

	settings, err := s.repo.GetByCurrency(ctx, currency)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsCacheKey+string(currency), settings, settingsCacheTTL); err != nil {
			s.logger.Warn("Failed to cache fee settings", map[string]interface{}{
				"currency": currency,
				"error":    err.Error(),
			})
		}
	}

	return settings, nil
}

// Quote returns the fee and total debit for a transaction before it runs.
func (s *Service) Quote(ctx context.Context, currency domain.Currency, txType domain.TransactionType, amount decimal.Decimal) (fee, total decimal.Decimal, err error) {
	switch txType {
	case domain.TransactionTypeDeposit,
		domain.TransactionTypeWithdrawal,
		domain.TransactionTypeTransfer,
		domain.TransactionTypeQRPayment,
		domain.TransactionTypeService:
	default:
		// Settlements price through commission percents, not the schedule.
		return decimal.Zero, decimal.Zero, errors.ErrInvalidTransactionType
	}

	settings, err := s.Settings(ctx, currency)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	percent, fixed := settings.Schedule(txType)
	fee = Compute(amount, percent, fixed, currency)
	return fee, amount.Add(fee), nil
}

// UpdateRequest is the admin mutation payload for one currency's schedule.
type UpdateRequest struct {
	Currency                     domain.Currency `json:"currency" validate:"required"`
	DepositFeePercent            decimal.Decimal `json:"deposit_fee_percent" validate:"gte=0,lte=100"`
	DepositFeeFixed              decimal.Decimal `json:"deposit_fee_fixed" validate:"gte=0"`
	WithdrawalFeePercent         decimal.Decimal `json:"withdrawal_fee_percent" validate:"gte=0,lte=100"`
	WithdrawalFeeFixed           decimal.Decimal `json:"withdrawal_fee_fixed" validate:"gte=0"`
	TransferFeePercent           decimal.Decimal `json:"transfer_fee_percent" validate:"gte=0,lte=100"`
	TransferFeeFixed             decimal.Decimal `json:"transfer_fee_fixed" validate:"gte=0"`
	QRPaymentFeePercent          decimal.Decimal `json:"qr_payment_fee_percent" validate:"gte=0,lte=100"`
	QRPaymentFeeFixed            decimal.Decimal `json:"qr_payment_fee_fixed" validate:"gte=0"`
	ServiceFeePercent            decimal.Decimal `json:"service_fee_percent" validate:"gte=0,lte=100"`
	ServiceFeeFixed              decimal.Decimal `json:"service_fee_fixed" validate:"gte=0"`
	AgentCommissionPercent       decimal.Decimal `json:"agent_commission_percent" validate:"gte=0,lte=100"`
	SettlementPlatformCommission decimal.Decimal `json:"settlement_platform_commission" validate:"gte=0,lte=100"`
	SettlementAgentCommission    decimal.Decimal `json:"settlement_agent_commission" validate:"gte=0,lte=100"`
}

// UpdateSettings replaces a currency's fee schedule and drops the cache entry.
func (s *Service) UpdateSettings(ctx context.Context, req *UpdateRequest, adminID uuid.UUID) (*domain.FeeSettings, error) {
	if !req.Currency.Valid() {
		return nil, errors.ErrUnsupportedCurrency
	}

	settings := &domain.FeeSettings{
		ID:                           uuid.New(),
		Currency:                     req.Currency,
		DepositFeePercent:            req.DepositFeePercent,
		DepositFeeFixed:              req.DepositFeeFixed,
		WithdrawalFeePercent:         req.WithdrawalFeePercent,
		WithdrawalFeeFixed:           req.WithdrawalFeeFixed,
		TransferFeePercent:           req.TransferFeePercent,
		TransferFeeFixed:             req.TransferFeeFixed,
		QRPaymentFeePercent:          req.QRPaymentFeePercent,
		QRPaymentFeeFixed:            req.QRPaymentFeeFixed,
		ServiceFeePercent:            req.ServiceFeePercent,
		ServiceFeeFixed:              req.ServiceFeeFixed,
		AgentCommissionPercent:       req.AgentCommissionPercent,
		SettlementPlatformCommission: req.SettlementPlatformCommission,
		SettlementAgentCommission:    req.SettlementAgentCommission,
		UpdatedBy:                    &adminID,
		UpdatedAt:                    time.Now(),
	}

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, settingsCacheKey+string(req.Currency)); err != nil {
			s.logger.Warn("Failed to invalidate fee settings cache", map[string]interface{}{
				"currency": req.Currency,
				"error":    err.Error(),
			})
		}
	}

	s.logger.Info("Fee settings updated", map[string]interface{}{
		"currency": req.Currency,
		"admin_id": adminID,
	})

	return settings, nil
}
