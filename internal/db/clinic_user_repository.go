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

const usersCollection = "users"

// firestoreClinicUserRepository implements ClinicUserRepository with the same
// dual-path read as patients: sub-collection first, legacy flat fallback.
type firestoreClinicUserRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreClinicUserRepository creates a new clinic-user repository.
func NewFirestoreClinicUserRepository(client *firestore.Client, logger *zap.Logger) ClinicUserRepository {
	return &firestoreClinicUserRepository{client: client, logger: logger}
}

func setClinicUserID(u *models.ClinicUser, id string) { u.ID = id }

// ListByAccount returns the staff users of one account, newest first.
func (r *firestoreClinicUserRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.ClinicUser, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for ListByAccount operation")
	}

	subQuery := r.client.Collection(accountsCollection).Doc(accountID).
		Collection(usersCollection).
		OrderBy("createdAt", firestore.Desc)
	users, err := drainDocs(r.logger, subQuery.Documents(ctx), setClinicUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users (sub-collection) for account '%s': %w", accountID, err)
	}
	if len(users) > 0 {
		return users, nil
	}

	flatQuery := r.client.Collection(usersCollection).
		Where("accountId", "==", accountID).
		OrderBy("createdAt", firestore.Desc)
	users, err = drainDocs(r.logger, flatQuery.Documents(ctx), setClinicUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users (flat collection) for account '%s': %w", accountID, err)
	}
	return users, nil
}

// Create adds a clinic user to the legacy flat collection.
func (r *firestoreClinicUserRepository) Create(ctx context.Context, user *models.ClinicUser) (string, error) {
	if user.AccountID == "" {
		return "", errors.New("clinic user accountId cannot be empty")
	}
	docRef := r.client.Collection(usersCollection).NewDoc()
	user.ID = docRef.ID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.IsActive = true
	if _, err := docRef.Create(ctx, user); err != nil {
		return "", fmt.Errorf("failed to create clinic user: %w", err)
	}
	return docRef.ID, nil
}
