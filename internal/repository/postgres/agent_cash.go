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

// AgentCashRepository tracks the physical cash each agent holds.
type AgentCashRepository struct {
	db *sqlx.DB
}

func NewAgentCashRepository(db *sqlx.DB) *AgentCashRepository {
	return &AgentCashRepository{db: db}
}

func (r *AgentCashRepository) Get(ctx context.Context, agentID uuid.UUID, currency domain.Currency) (*domain.AgentCash, error) {
	ac := &domain.AgentCash{}
	query := `SELECT * FROM agent_cash WHERE agent_id = $1 AND currency = $2`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), ac, query, agentID, currency)
	if err != nil {
		if err == sql.ErrNoRows {
			return &domain.AgentCash{AgentID: agentID, Currency: currency, Amount: decimal.Zero}, nil
		}
		return nil, errors.Wrap(err, "failed to get agent cash")
	}
	return ac, nil
}

// Add increases an agent's cash position, creating the row on first use.
func (r *AgentCashRepository) Add(ctx context.Context, agentID uuid.UUID, currency domain.Currency, amount decimal.Decimal) error {
	query := `
		INSERT INTO agent_cash (agent_id, currency, amount, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (agent_id, currency)
		DO UPDATE SET amount = agent_cash.amount + EXCLUDED.amount, updated_at = NOW()
	`
	_, err := ext(ctx, r.db).ExecContext(ctx, query, agentID, currency, amount)
	return errors.Wrap(err, "failed to add agent cash")
}

// Subtract lowers an agent's cash position, never below zero.
func (r *AgentCashRepository) Subtract(ctx context.Context, agentID uuid.UUID, currency domain.Currency, amount decimal.Decimal) error {
	query := `
		UPDATE agent_cash SET amount = amount - $1, updated_at = NOW()
		WHERE agent_id = $2 AND currency = $3 AND amount >= $1
	`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, amount, agentID, currency)
	if err != nil {
		return errors.Wrap(err, "failed to subtract agent cash")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.ErrSourceAgentInsufficientCash
	}
	return nil
}
