package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
)

// AuditRepository implements audit log persistence.
type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, user_id, action, entity_type, entity_id,
			old_values, new_values, ip_address, user_agent,
			request_id, status_code, error_message, created_at
		) VALUES (
			:id, :user_id, :action, :entity_type, :entity_id,
			:old_values, :new_values, :ip_address, :user_agent,
			:request_id, :status_code, :error_message, :created_at
		)
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, log)
	return errors.Wrap(err, "failed to create audit log")
}

func (r *AuditRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	query := `SELECT * FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &logs, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find audit logs")
	}
	return logs, nil
}

func (r *AuditRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	query := `
		SELECT * FROM audit_logs
		WHERE user_id = $1 OR entity_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &logs, query, userID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find audit logs by user")
	}
	return logs, nil
}
