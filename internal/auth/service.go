// Package auth implements registration, login, and JWT issuance.
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/config"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	users   UserRepository
	wallets WalletRepository
	txm     TxManager
	cfg     config.JWTConfig
	logger  logger.Logger
}

func NewService(users UserRepository, wallets WalletRepository, txm TxManager, cfg config.JWTConfig, log logger.Logger) *Service {
	return &Service{
		users:   users,
		wallets: wallets,
		txm:     txm,
		cfg:     cfg,
		logger:  log,
	}
}

type RegisterRequest struct {
	Phone     string `json:"phone" validate:"required,syrian_phone"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Role      string `json:"role" validate:"omitempty,oneof=user agent merchant"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required,syrian_phone"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// Register creates the user and a wallet per supported currency in one
// transaction. The admin role can never be self-assigned.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	phone := validator.NormalizePhone(req.Phone)

	exists, err := s.users.ExistsByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrUserAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if role == domain.RoleAdmin {
		return nil, errors.ErrForbidden
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Phone:        phone,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		KYCStatus:    domain.KYCStatusPending,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			var pqErr *pq.Error
			if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
				return errors.ErrUserAlreadyExists
			}
			return err
		}
		for _, currency := range domain.Currencies {
			wallet := &domain.Wallet{
				ID:        uuid.New(),
				UserID:    user.ID,
				Currency:  currency,
				Balance:   decimal.Zero,
				Status:    domain.WalletStatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.wallets.Create(ctx, wallet); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	return s.issueToken(user)
}

// Login authenticates by phone and password.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	user, err := s.users.FindByPhone(ctx, validator.NormalizePhone(req.Phone))
	if err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, errors.ErrUserInactive
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *Service) issueToken(user *domain.User) (*TokenResponse, error) {
	expiresAt := time.Now().Add(s.cfg.Expiration)

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"phone":   user.Phone,
		"role":    string(user.Role),
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
