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

type SettlementRepository struct {
	db *sqlx.DB
}

func NewSettlementRepository(db *sqlx.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

func (r *SettlementRepository) Create(ctx context.Context, s *domain.Settlement) error {
	query := `
		INSERT INTO settlements (
			id, settlement_number, agent_id, type, requested_amount, currency,
			cash_collected, platform_share, agent_share, amount_due,
			credit_given, cash_to_receive, credit_deducted,
			delivery_method, delivery_status, source_agent_id,
			status, notes, reviewed_by, version, created_at, updated_at
		) VALUES (
			:id, :settlement_number, :agent_id, :type, :requested_amount, :currency,
			:cash_collected, :platform_share, :agent_share, :amount_due,
			:credit_given, :cash_to_receive, :credit_deducted,
			:delivery_method, :delivery_status, :source_agent_id,
			:status, :notes, :reviewed_by, :version, :created_at, :updated_at
		)
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, s)
	return errors.Wrap(err, "failed to create settlement")
}

// settlementSelect joins the agent (and, for agent deliveries, the cash
// source agent) identity into every settlement read, so queue views do not
// need a lookup per row.
const settlementSelect = `
	SELECT s.*,
	       u.first_name || ' ' || u.last_name AS agent_name,
	       u.phone AS agent_phone,
	       su.first_name || ' ' || su.last_name AS source_agent_name,
	       su.phone AS source_agent_phone
	FROM settlements s
	JOIN users u ON u.id = s.agent_id
	LEFT JOIN users su ON su.id = s.source_agent_id`

func (r *SettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Settlement, error) {
	s := &domain.Settlement{}
	query := settlementSelect + ` WHERE s.id = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), s, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrSettlementNotFound
		}
		return nil, errors.Wrap(err, "failed to find settlement by id")
	}
	return s, nil
}

// UpdateVersioned persists s only if the row still carries the version the
// settlement was loaded with, then bumps it. A zero-row update means another
// admin got there first.
func (r *SettlementRepository) UpdateVersioned(ctx context.Context, s *domain.Settlement) error {
	query := `
		UPDATE settlements SET
			status = :status,
			delivery_method = :delivery_method,
			delivery_status = :delivery_status,
			source_agent_id = :source_agent_id,
			notes = :notes,
			reviewed_by = :reviewed_by,
			reviewed_at = :reviewed_at,
			completed_at = :completed_at,
			version = version + 1,
			updated_at = NOW()
		WHERE id = :id AND version = :version
	`
	result, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, s)
	if err != nil {
		return errors.Wrap(err, "failed to update settlement")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.ErrVersionConflict
	}
	s.Version++
	return nil
}

func (r *SettlementRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Settlement, error) {
	var settlements []*domain.Settlement
	query := settlementSelect + ` ORDER BY s.created_at DESC LIMIT $1 OFFSET $2`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &settlements, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find settlements")
	}
	return settlements, nil
}

func (r *SettlementRepository) FindByAgentID(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*domain.Settlement, error) {
	var settlements []*domain.Settlement
	query := settlementSelect + ` WHERE s.agent_id = $1 ORDER BY s.created_at DESC LIMIT $2 OFFSET $3`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &settlements, query, agentID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find settlements by agent")
	}
	return settlements, nil
}

func (r *SettlementRepository) FindByStatus(ctx context.Context, status domain.SettlementStatus, limit, offset int) ([]*domain.Settlement, error) {
	var settlements []*domain.Settlement
	query := settlementSelect + ` WHERE s.status = $1 ORDER BY s.created_at DESC LIMIT $2 OFFSET $3`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &settlements, query, status, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find settlements by status")
	}
	return settlements, nil
}

// AgentsWithCash returns active agents holding at least minAmount cash in
// the given currency, the candidate pool for FROM_AGENT delivery.
func (r *SettlementRepository) AgentsWithCash(ctx context.Context, currency domain.Currency, minAmount decimal.Decimal) ([]*domain.AgentCashPosition, error) {
	var positions []*domain.AgentCashPosition
	query := `
		SELECT u.id AS agent_id, u.first_name, u.last_name, u.phone,
		       ac.currency, ac.amount AS cash_amount
		FROM agent_cash ac
		JOIN users u ON u.id = ac.agent_id
		WHERE ac.currency = $1 AND ac.amount >= $2
		  AND u.role = 'agent' AND u.is_active
		ORDER BY ac.amount DESC
	`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &positions, query, currency, minAmount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find agents with cash")
	}
	return positions, nil
}
