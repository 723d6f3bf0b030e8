// Package kyc implements identity document submission and admin review.
package kyc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/errors"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type Repository interface {
	Create(ctx context.Context, sub *domain.KYCSubmission) error
	Update(ctx context.Context, sub *domain.KYCSubmission) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.KYCSubmission, error)
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*domain.KYCSubmission, error)
	FindByStatus(ctx context.Context, status domain.KYCStatus, limit, offset int) ([]*domain.KYCSubmission, error)
}

type UserRepository interface {
	UpdateKYCStatus(ctx context.Context, id uuid.UUID, status domain.KYCStatus) error
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error
}

type Service struct {
	repo     Repository
	users    UserRepository
	txm      TxManager
	notifier Notifier
	logger   logger.Logger
}

func NewService(repo Repository, users UserRepository, txm TxManager, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		txm:      txm,
		notifier: notifier,
		logger:   log,
	}
}

type SubmitRequest struct {
	DocumentType   domain.KYCDocumentType `json:"document_type" validate:"required"`
	DocumentNumber string                 `json:"document_number" validate:"required,max=50"`
	FullName       string                 `json:"full_name" validate:"required,max=100"`
	DateOfBirth    time.Time              `json:"date_of_birth" validate:"required"`
}

// Submit files a verification request. A user with an open or already
// verified submission cannot file another; a rejected user may resubmit.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req *SubmitRequest) (*domain.KYCSubmission, error) {
	if !req.DocumentType.Valid() {
		return nil, errors.ErrInvalidKYCDocument
	}

	latest, err := s.repo.FindLatestByUser(ctx, userID)
	if err == nil {
		switch latest.Status {
		case domain.KYCStatusUnderReview:
			return nil, errors.ErrKYCUnderReview
		case domain.KYCStatusVerified:
			return nil, errors.ErrKYCAlreadyVerified
		}
	} else if err != errors.ErrKYCSubmissionNotFound {
		return nil, err
	}

	now := time.Now()
	sub := &domain.KYCSubmission{
		ID:             uuid.New(),
		UserID:         userID,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		FullName:       req.FullName,
		DateOfBirth:    req.DateOfBirth,
		Status:         domain.KYCStatusUnderReview,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, sub); err != nil {
			return err
		}
		return s.users.UpdateKYCStatus(ctx, userID, domain.KYCStatusUnderReview)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("KYC submitted", map[string]interface{}{
		"submission_id": sub.ID,
		"user_id":       userID,
		"document_type": sub.DocumentType,
	})

	return sub, nil
}

const (
	ReviewApprove = "approve"
	ReviewReject  = "reject"
)

type ReviewRequest struct {
	SubmissionID uuid.UUID `json:"submission_id" validate:"required"`
	Action       string    `json:"action" validate:"required,oneof=approve reject"`
	Reason       string    `json:"reason" validate:"max=500"`
}

// Review decides a submission and mirrors the outcome onto the user row.
func (s *Service) Review(ctx context.Context, adminID uuid.UUID, req *ReviewRequest) (*domain.KYCSubmission, error) {
	sub, err := s.repo.FindByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.KYCStatusUnderReview {
		return nil, errors.ErrKYCNotUnderReview
	}

	now := time.Now()
	sub.ReviewedBy = &adminID
	sub.ReviewedAt = &now

	var userStatus domain.KYCStatus
	switch req.Action {
	case ReviewApprove:
		sub.Status = domain.KYCStatusVerified
		userStatus = domain.KYCStatusVerified
	case ReviewReject:
		if req.Reason == "" {
			return nil, errors.ErrKYCReasonRequired
		}
		sub.Status = domain.KYCStatusRejected
		sub.RejectionReason = &req.Reason
		userStatus = domain.KYCStatusRejected
	default:
		return nil, errors.ErrInvalidKYCAction
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, sub); err != nil {
			return err
		}
		return s.users.UpdateKYCStatus(ctx, sub.UserID, userStatus)
	})
	if err != nil {
		return nil, err
	}

	go func() {
		_ = s.notifier.Notify(context.Background(), sub.UserID, "KYC_DECIDED", map[string]interface{}{
			"status": sub.Status,
			"reason": req.Reason,
		})
	}()

	s.logger.Info("KYC reviewed", map[string]interface{}{
		"submission_id": sub.ID,
		"status":        sub.Status,
		"admin_id":      adminID,
	})

	return sub, nil
}

// Status returns the user's latest submission, if any.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*domain.KYCSubmission, error) {
	return s.repo.FindLatestByUser(ctx, userID)
}

// Pending lists submissions awaiting review, oldest first.
func (s *Service) Pending(ctx context.Context, limit, offset int) ([]*domain.KYCSubmission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.FindByStatus(ctx, domain.KYCStatusUnderReview, limit, offset)
}
