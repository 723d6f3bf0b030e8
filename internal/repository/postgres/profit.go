package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
)

// ProfitRepository persists the platform fee-revenue pools and withdrawals.
type ProfitRepository struct {
	db *sqlx.DB
}

func NewProfitRepository(db *sqlx.DB) *ProfitRepository {
	return &ProfitRepository{db: db}
}

func (r *ProfitRepository) GetPool(ctx context.Context, currency domain.Currency) (*domain.PlatformProfit, error) {
	pool := &domain.PlatformProfit{}
	query := `SELECT * FROM platform_profits WHERE currency = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), pool, query, currency)
	if err != nil {
		if err == sql.ErrNoRows {
			return &domain.PlatformProfit{Currency: currency, Balance: decimal.Zero}, nil
		}
		return nil, errors.Wrap(err, "failed to get profit pool")
	}
	return pool, nil
}

func (r *ProfitRepository) GetPools(ctx context.Context) ([]*domain.PlatformProfit, error) {
	var pools []*domain.PlatformProfit
	query := `SELECT * FROM platform_profits ORDER BY currency`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &pools, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list profit pools")
	}
	return pools, nil
}

// Accrue adds fee revenue to the pool, creating the row on first use.
func (r *ProfitRepository) Accrue(ctx context.Context, currency domain.Currency, amount decimal.Decimal) error {
	query := `
		INSERT INTO platform_profits (currency, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (currency)
		DO UPDATE SET balance = platform_profits.balance + EXCLUDED.balance, updated_at = NOW()
	`
	_, err := ext(ctx, r.db).ExecContext(ctx, query, currency, amount)
	return errors.Wrap(err, "failed to accrue platform profit")
}

// Deduct removes amount from the pool; overdrawing is rejected in SQL.
func (r *ProfitRepository) Deduct(ctx context.Context, currency domain.Currency, amount decimal.Decimal) error {
	query := `
		UPDATE platform_profits SET balance = balance - $1, updated_at = NOW()
		WHERE currency = $2 AND balance >= $1
	`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, amount, currency)
	if err != nil {
		return errors.Wrap(err, "failed to deduct platform profit")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.ErrInsufficientProfit
	}
	return nil
}

func (r *ProfitRepository) CreateWithdrawal(ctx context.Context, w *domain.ProfitWithdrawal) error {
	query := `
		INSERT INTO profit_withdrawals (
			id, amount, currency, method, bank_details, phone,
			notes, status, requested_by, created_at
		) VALUES (
			:id, :amount, :currency, :method, :bank_details, :phone,
			:notes, :status, :requested_by, :created_at
		)
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, w)
	return errors.Wrap(err, "failed to create profit withdrawal")
}

func (r *ProfitRepository) ListWithdrawals(ctx context.Context, limit, offset int) ([]*domain.ProfitWithdrawal, error) {
	var withdrawals []*domain.ProfitWithdrawal
	query := `SELECT * FROM profit_withdrawals ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &withdrawals, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list profit withdrawals")
	}
	return withdrawals, nil
}
