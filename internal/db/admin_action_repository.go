package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/models"
)

const adminActionsCollection = "admin_actions"

// firestoreAdminActionRepository implements AdminActionRepository.
type firestoreAdminActionRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreAdminActionRepository creates a new admin action repository.
func NewFirestoreAdminActionRepository(client *firestore.Client, logger *zap.Logger) AdminActionRepository {
	return &firestoreAdminActionRepository{client: client, logger: logger}
}

func (r *firestoreAdminActionRepository) Create(ctx context.Context, action *models.AdminAction) error {
	if action == nil {
		return errors.New("action cannot be nil for Create operation")
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(adminActionsCollection).NewDoc()
	action.ID = docRef.ID

	if _, err := docRef.Set(ctx, action); err != nil {
		return fmt.Errorf("failed to record admin action '%s': %w", action.Action, err)
	}
	return nil
}

func (r *firestoreAdminActionRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.AdminAction, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for ListByAccount operation")
	}

	iter := r.client.Collection(adminActionsCollection).
		Where("accountId", "==", accountID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	actions, err := drainDocs(r.logger, iter, func(a *models.AdminAction, id string) { a.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list admin actions for account '%s': %w", accountID, err)
	}
	return actions, nil
}
