package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ixiclinic-admin-go/internal/models"
)

const systemAlertsCollection = "system_alerts"

// firestoreAlertRepository implements AlertRepository.
type firestoreAlertRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreAlertRepository creates a new alert repository.
func NewFirestoreAlertRepository(client *firestore.Client, logger *zap.Logger) AlertRepository {
	return &firestoreAlertRepository{client: client, logger: logger}
}

func (r *firestoreAlertRepository) ListUnresolved(ctx context.Context) ([]*models.SystemAlert, error) {
	iter := r.client.Collection(systemAlertsCollection).
		Where("resolved", "==", false).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	alerts, err := drainDocs(r.logger, iter, func(a *models.SystemAlert, id string) { a.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved alerts: %w", err)
	}
	return alerts, nil
}

func (r *firestoreAlertRepository) Resolve(ctx context.Context, alertID string) error {
	if alertID == "" {
		return errors.New("alertID cannot be empty for Resolve operation")
	}

	_, err := r.client.Collection(systemAlertsCollection).Doc(alertID).Update(ctx, []firestore.Update{
		{Path: "resolved", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("alert '%s': %w", alertID, ErrNotFound)
		}
		return fmt.Errorf("failed to resolve alert '%s': %w", alertID, err)
	}
	return nil
}
