package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
)

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, reference, type, sender_id, receiver_id, sender_wallet_id,
			receiver_wallet_id, amount, currency, fee_amount, net_amount,
			status, description, metadata, created_at, completed_at
		) VALUES (
			:id, :reference, :type, :sender_id, :receiver_id, :sender_wallet_id,
			:receiver_wallet_id, :amount, :currency, :fee_amount, :net_amount,
			:status, :description, :metadata, :created_at, :completed_at
		)
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, tx)
	return errors.Wrap(err, "failed to create transaction")
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	query := `SELECT * FROM transactions WHERE id = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), tx, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrTransactionNotFound
		}
		return nil, errors.Wrap(err, "failed to find transaction by id")
	}
	return tx, nil
}

func (r *TransactionRepository) FindByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction
	query := `
		SELECT * FROM transactions
		WHERE sender_wallet_id = $1 OR receiver_wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &txs, query, walletID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find transactions by wallet id")
	}
	return txs, nil
}

func (r *TransactionRepository) CountByWalletID(ctx context.Context, walletID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM transactions
		WHERE sender_wallet_id = $1 OR receiver_wallet_id = $1
	`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &count, query, walletID)
	return count, errors.Wrap(err, "failed to count transactions by wallet id")
}

func (r *TransactionRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction
	query := `SELECT * FROM transactions ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &txs, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find all transactions")
	}
	return txs, nil
}
