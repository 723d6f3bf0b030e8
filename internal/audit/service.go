// Package audit records admin and system mutations for later review.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type Repository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	FindAll(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.AuditLog, error)
}

type Service struct {
	repo   Repository
	logger logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Entry describes one auditable mutation.
type Entry struct {
	UserID       *uuid.UUID
	Action       string
	EntityType   string
	EntityID     *uuid.UUID
	OldValues    domain.Metadata
	NewValues    domain.Metadata
	IPAddress    string
	UserAgent    string
	RequestID    string
	StatusCode   int
	ErrorMessage string
}

// Record persists an audit entry. Failures are logged, never propagated;
// an audit miss must not fail the mutation it describes.
func (s *Service) Record(ctx context.Context, e *Entry) {
	log := &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       e.UserID,
		Action:       e.Action,
		EntityType:   e.EntityType,
		EntityID:     e.EntityID,
		OldValues:    e.OldValues,
		NewValues:    e.NewValues,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		RequestID:    e.RequestID,
		StatusCode:   e.StatusCode,
		ErrorMessage: e.ErrorMessage,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Error("Failed to write audit log", map[string]interface{}{
			"action": e.Action,
			"error":  err.Error(),
		})
	}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.FindAll(ctx, limit, offset)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.FindByUserID(ctx, userID, limit, offset)
}
