package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
)

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (
			id, user_id, currency, balance, status, created_at, updated_at
		) VALUES (
			:id, :user_id, :currency, :balance, :status, :created_at, :updated_at
		)
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, wallet)
	return errors.Wrap(err, "failed to create wallet")
}

func (r *WalletRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	wallet := &domain.Wallet{}
	query := `SELECT * FROM wallets WHERE id = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), wallet, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrWalletNotFound
		}
		return nil, errors.Wrap(err, "failed to find wallet by id")
	}
	return wallet, nil
}

func (r *WalletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	var wallets []*domain.Wallet
	query := `SELECT * FROM wallets WHERE user_id = $1 ORDER BY currency`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &wallets, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find wallets by user id")
	}
	return wallets, nil
}

func (r *WalletRepository) FindByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	wallet := &domain.Wallet{}
	query := `SELECT * FROM wallets WHERE user_id = $1 AND currency = $2`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), wallet, query, userID, currency)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrWalletNotFound
		}
		return nil, errors.Wrap(err, "failed to find wallet by user and currency")
	}
	return wallet, nil
}

// Debit subtracts amount from the wallet balance. The balance check is part
// of the UPDATE so concurrent debits cannot overdraw.
func (r *WalletRepository) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE wallets SET
			balance = balance - $1,
			last_transaction_at = NOW(),
			updated_at = NOW()
		WHERE id = $2 AND status = 'active' AND balance >= $1
	`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, amount, id)
	if err != nil {
		return errors.Wrap(err, "failed to debit wallet")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.ErrInsufficientBalance
	}
	return nil
}

func (r *WalletRepository) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE wallets SET
			balance = balance + $1,
			last_transaction_at = NOW(),
			updated_at = NOW()
		WHERE id = $2 AND status = 'active'
	`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, amount, id)
	if err != nil {
		return errors.Wrap(err, "failed to credit wallet")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.ErrWalletNotFound
	}
	return nil
}
