// Package exchange serves the admin-set SYP/USD rates used to price
// cross-currency deposits and withdrawals.
package exchange

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
	rateCacheKey = "exchange:rate:"
	rateCacheTTL = time.Minute
)

type Repository interface {
	FindActive(ctx context.Context, rateType domain.RateType) (*domain.ExchangeRate, error)
	Deactivate(ctx context.Context, rateType domain.RateType) error
	Create(ctx context.Context, rate *domain.ExchangeRate) error
	History(ctx context.Context, rateType domain.RateType, limit int) ([]*domain.ExchangeRate, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   Repository
	cache  Cache
	txm    TxManager
	logger logger.Logger
}

func NewService(repo Repository, cache Cache, txm TxManager, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		txm:    txm,
		logger: log,
	}
}

// ActiveRate returns the current rate for a type, cached briefly since it
// only moves when an admin sets it.
func (s *Service) ActiveRate(ctx context.Context, rateType domain.RateType) (*domain.ExchangeRate, error) {
	if !rateType.Valid() {
		return nil, errors.ErrRateNotAvailable
	}

	if s.cache != nil {
		cached := &domain.ExchangeRate{}
		if err := s.cache.Get(ctx, rateCacheKey+string(rateType), cached); err == nil {
			return cached, nil
		}
	}

	rate, err := s.repo.FindActive(ctx, rateType)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rateCacheKey+string(rateType), rate, rateCacheTTL); err != nil {
			s.logger.Warn("Failed to cache exchange rate", map[string]interface{}{
				"type":  rateType,
				"error": err.Error(),
			})
		}
	}

	return rate, nil
}

// Rates returns both active rates for the public quote endpoint.
func (s *Service) Rates(ctx context.Context) (deposit, withdraw *domain.ExchangeRate, err error) {
	deposit, err = s.ActiveRate(ctx, domain.RateTypeDeposit)
	if err != nil {
		return nil, nil, err
	}
	withdraw, err = s.ActiveRate(ctx, domain.RateTypeWithdraw)
	if err != nil {
		return nil, nil, err
	}
	return deposit, withdraw, nil
}

type SetRateRequest struct {
	Type domain.RateType `json:"type" validate:"required,oneof=DEPOSIT WITHDRAW"`
	Rate decimal.Decimal `json:"rate" validate:"required,gt=0"`
}

// SetRate retires the active rate for a type and activates the new one in a
// single transaction, so there is never zero or two active rows.
func (s *Service) SetRate(ctx context.Context, adminID uuid.UUID, req *SetRateRequest) (*domain.ExchangeRate, error) {
	if !req.Type.Valid() {
		return nil, errors.ErrRateNotAvailable
	}
	if !req.Rate.IsPositive() {
		return nil, errors.ErrRateNotAvailable
	}

	now := time.Now()
	rate := &domain.ExchangeRate{
		ID:        uuid.New(),
		Type:      req.Type,
		Rate:      req.Rate,
		IsActive:  true,
		UpdatedBy: &adminID,
		UpdatedAt: now,
		CreatedAt: now,
	}

	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Deactivate(ctx, req.Type); err != nil {
			return err
		}
		return s.repo.Create(ctx, rate)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, rateCacheKey+string(req.Type)); err != nil {
			s.logger.Warn("Failed to invalidate exchange rate cache", map[string]interface{}{
				"type":  req.Type,
				"error": err.Error(),
			})
		}
	}

	s.logger.Info("Exchange rate updated", map[string]interface{}{
		"type":     req.Type,
		"rate":     req.Rate.String(),
		"admin_id": adminID,
	})

	return rate, nil
}

func (s *Service) History(ctx context.Context, rateType domain.RateType, limit int) ([]*domain.ExchangeRate, error) {
	if !rateType.Valid() {
		return nil, errors.ErrRateNotAvailable
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.History(ctx, rateType, limit)
}

// ConvertUSDToSYP prices a USD amount in SYP at the given rate, rounded to
// whole pounds.
func ConvertUSDToSYP(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(domain.SYP.Exponent())
}

// ConvertSYPToUSD prices an SYP amount in USD at the given rate.
func ConvertSYPToUSD(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Div(rate).Round(domain.USD.Exponent())
}
