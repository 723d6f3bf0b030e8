package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
)

type KYCRepository struct {
	db *sqlx.DB
}

func NewKYCRepository(db *sqlx.DB) *KYCRepository {
	return &KYCRepository{db: db}
}

func (r *KYCRepository) Create(ctx context.Context, sub *domain.KYCSubmission) error {
	query := `
		INSERT INTO kyc_submissions (
			id, user_id, document_type, document_number, full_name, date_of_birth,
			status, rejection_reason, reviewed_by, reviewed_at, created_at, updated_at
		) VALUES (
			:id, :user_id, :document_type, :document_number, :full_name, :date_of_birth,
			:status, :rejection_reason, :reviewed_by, :reviewed_at, :created_at, :updated_at
		)
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, sub)
	return errors.Wrap(err, "failed to create kyc submission")
}

func (r *KYCRepository) Update(ctx context.Context, sub *domain.KYCSubmission) error {
	sub.UpdatedAt = time.Now()
	query := `
		UPDATE kyc_submissions SET
			status = :status,
			rejection_reason = :rejection_reason,
			reviewed_by = :reviewed_by,
			reviewed_at = :reviewed_at,
			updated_at = :updated_at
		WHERE id = :id
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, sub)
	return errors.Wrap(err, "failed to update kyc submission")
}

func (r *KYCRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.KYCSubmission, error) {
	sub := &domain.KYCSubmission{}
	query := `SELECT * FROM kyc_submissions WHERE id = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), sub, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrKYCSubmissionNotFound
		}
		return nil, errors.Wrap(err, "failed to find kyc submission")
	}
	return sub, nil
}

func (r *KYCRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*domain.KYCSubmission, error) {
	sub := &domain.KYCSubmission{}
	query := `SELECT * FROM kyc_submissions WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), sub, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrKYCSubmissionNotFound
		}
		return nil, errors.Wrap(err, "failed to find latest kyc submission")
	}
	return sub, nil
}

func (r *KYCRepository) FindByStatus(ctx context.Context, status domain.KYCStatus, limit, offset int) ([]*domain.KYCSubmission, error) {
	var subs []*domain.KYCSubmission
	query := `SELECT * FROM kyc_submissions WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &subs, query, status, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find kyc submissions by status")
	}
	return subs, nil
}
