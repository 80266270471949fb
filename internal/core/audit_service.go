package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ixiclinic-admin-go/internal/db"
	"ixiclinic-admin-go/internal/models"
)

// auditService implements AuditService over the admin action repository.
type auditService struct {
	actionRepo db.AdminActionRepository
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(ar db.AdminActionRepository) AuditService {
	return &auditService{actionRepo: ar}
}

func (s *auditService) Record(ctx context.Context, action *models.AdminAction) error {
	if s.actionRepo == nil {
		return errors.New("auditService: actionRepo not initialized")
	}
	if action == nil {
		return errors.New("auditService: action cannot be nil")
	}
	if action.Action == "" {
		return errors.New("auditService: action name cannot be empty")
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now().UTC()
	}
	if err := s.actionRepo.Create(ctx, action); err != nil {
		return fmt.Errorf("failed to record admin action: %w", err)
	}
	return nil
}

func (s *auditService) ListByAccount(ctx context.Context, accountID string) ([]*models.AdminAction, error) {
	if s.actionRepo == nil {
		return nil, errors.New("auditService: actionRepo not initialized")
	}
	return s.actionRepo.ListByAccount(ctx, accountID)
}
