package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
)

type ExchangeRateRepository struct {
	db *sqlx.DB
}

func NewExchangeRateRepository(db *sqlx.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

func (r *ExchangeRateRepository) FindActive(ctx context.Context, rateType domain.RateType) (*domain.ExchangeRate, error) {
	rate := &domain.ExchangeRate{}
	query := `SELECT * FROM exchange_rates WHERE type = $1 AND is_active ORDER BY created_at DESC LIMIT 1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), rate, query, rateType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrRateNotAvailable
		}
		return nil, errors.Wrap(err, "failed to find active exchange rate")
	}
	return rate, nil
}

// Deactivate retires the currently active rate for a type.
func (r *ExchangeRateRepository) Deactivate(ctx context.Context, rateType domain.RateType) error {
	query := `UPDATE exchange_rates SET is_active = FALSE WHERE type = $1 AND is_active`
	_, err := ext(ctx, r.db).ExecContext(ctx, query, rateType)
	return errors.Wrap(err, "failed to deactivate exchange rate")
}

func (r *ExchangeRateRepository) Create(ctx context.Context, rate *domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (id, type, rate, is_active, updated_by, updated_at, created_at)
		VALUES (:id, :type, :rate, :is_active, :updated_by, :updated_at, :created_at)
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, rate)
	return errors.Wrap(err, "failed to create exchange rate")
}

func (r *ExchangeRateRepository) History(ctx context.Context, rateType domain.RateType, limit int) ([]*domain.ExchangeRate, error) {
	var rates []*domain.ExchangeRate
	query := `SELECT * FROM exchange_rates WHERE type = $1 ORDER BY created_at DESC LIMIT $2`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &rates, query, rateType, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load exchange rate history")
	}
	return rates, nil
}
