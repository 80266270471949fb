package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ixiclinic-admin-go/internal/models"
)

const accountsCollection = "accounts"

// firestoreAccountRepository implements AccountRepository using Firestore.
type firestoreAccountRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreAccountRepository creates a new account repository.
func NewFirestoreAccountRepository(client *firestore.Client, logger *zap.Logger) AccountRepository {
	return &firestoreAccountRepository{client: client, logger: logger}
}

// Create adds a new account document with an auto-generated ID and stamps
// createdAt/updatedAt.
func (r *firestoreAccountRepository) Create(ctx context.Context, account *models.Account) (string, error) {
	docRef := r.client.Collection(accountsCollection).NewDoc()
	account.ID = docRef.ID
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	account.IsActive = true

	if _, err := docRef.Create(ctx, account); err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves an account document by its ID.
func (r *firestoreAccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(accountsCollection).Doc(accountID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account with ID '%s': %w", accountID, err)
	}

	var account models.Account
	if err := docSnap.DataTo(&account); err != nil {
		return nil, fmt.Errorf("failed to decode account data for ID '%s': %w", accountID, err)
	}
	account.ID = docSnap.Ref.ID
	return &account, nil
}

// List retrieves every account, newest first.
func (r *firestoreAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := r.client.Collection(accountsCollection).OrderBy("createdAt", firestore.Desc)
	return r.collect(ctx, query.Documents(ctx))
}

// ListByStatus retrieves accounts filtered by billing subscription status,
// newest first.
func (r *firestoreAccountRepository) ListByStatus(ctx context.Context, st models.SubscriptionStatus) ([]*models.Account, error) {
	query := r.client.Collection(accountsCollection).
		Where("billingInfo.subscriptionStatus", "==", string(st)).
		OrderBy("createdAt", firestore.Desc)
	return r.collect(ctx, query.Documents(ctx))
}

func (r *firestoreAccountRepository) collect(ctx context.Context, iter *firestore.DocumentIterator) ([]*models.Account, error) {
	defer iter.Stop()

	accounts := []*models.Account{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate accounts: %w", err)
		}
		var account models.Account
		if err := doc.DataTo(&account); err != nil {
			// Schema-less store: skip documents that no longer decode.
			r.logger.Warn("skipping undecodable account document",
				zap.String("id", doc.Ref.ID), zap.Error(err))
			continue
		}
		account.ID = doc.Ref.ID
		accounts = append(accounts, &account)
	}
	return accounts, nil
}

// Update overwrites an account document, merging fields so partial models do
// not clear the rest. updatedAt is refreshed.
func (r *firestoreAccountRepository) Update(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		return errors.New("account ID cannot be empty for Update operation")
	}
	account.UpdatedAt = time.Now().UTC()
	_, err := r.client.Collection(accountsCollection).Doc(account.ID).Set(ctx, account, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update account with ID '%s': %w", account.ID, err)
	}
	return nil
}

// UpdateFields applies a partial update by dotted field path. Used by the
// membership operations that touch individual billingInfo fields.
func (r *firestoreAccountRepository) UpdateFields(ctx context.Context, accountID string, fields map[string]interface{}) error {
	if accountID == "" {
		return errors.New("accountID cannot be empty for UpdateFields operation")
	}
	updates := make([]firestore.Update, 0, len(fields)+1)
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now().UTC()})

	_, err := r.client.Collection(accountsCollection).Doc(accountID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("account with ID '%s' not found: %w", accountID, ErrNotFound)
		}
		return fmt.Errorf("failed to update fields of account '%s': %w", accountID, err)
	}
	return nil
}
