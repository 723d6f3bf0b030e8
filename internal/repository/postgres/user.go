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

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, phone, email, password_hash, first_name, last_name,
			role, kyc_status, is_active, email_verified, created_at, updated_at
		) VALUES (
			:id, :phone, :email, :password_hash, :first_name, :last_name,
			:role, :kyc_status, :is_active, :email_verified, :created_at, :updated_at
		)
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, user)
	return errors.Wrap(err, "failed to create user")
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()
	query := `
		UPDATE users SET
			email = :email,
			first_name = :first_name,
			last_name = :last_name,
			kyc_status = :kyc_status,
			is_active = :is_active,
			email_verified = :email_verified,
			last_login = :last_login,
			updated_at = :updated_at
		WHERE id = :id
	`
	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, user)
	return errors.Wrap(err, "failed to update user")
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT * FROM users WHERE id = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to find user by id")
	}
	return user, nil
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT * FROM users WHERE phone = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), user, query, phone)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to find user by phone")
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT * FROM users WHERE email = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to find user by email")
	}
	return user, nil
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &exists, query, phone)
	return exists, errors.Wrap(err, "failed to check user existence")
}

func (r *UserRepository) UpdateKYCStatus(ctx context.Context, id uuid.UUID, status domain.KYCStatus) error {
	query := `UPDATE users SET kyc_status = $1, updated_at = NOW() WHERE id = $2`
	_, err := ext(ctx, r.db).ExecContext(ctx, query, status, id)
	return errors.Wrap(err, "failed to update kyc status")
}

func (r *UserRepository) FindByRole(ctx context.Context, role domain.Role, limit, offset int) ([]*domain.User, error) {
	var users []*domain.User
	query := `SELECT * FROM users WHERE role = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &users, query, role, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find users by role")
	}
	return users, nil
}
