package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// purgedCollections are the flat collections whose documents reference an
// account by foreign key and are removed with it.
var purgedCollections = []string{
	patientsCollection,
	appointmentsCollection,
	usersCollection,
	invoicesCollection,
	filesCollection,
}

// firestorePurgeRepository implements PurgeRepository using a Firestore
// WriteBatch, so the account and all its dependents disappear atomically.
type firestorePurgeRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestorePurgeRepository creates a new purge repository.
func NewFirestorePurgeRepository(client *firestore.Client, logger *zap.Logger) PurgeRepository {
	return &firestorePurgeRepository{client: client, logger: logger}
}

// PurgeAccount collects every document referencing accountID across the
// dependent collections, adds them plus the account document to one batch and
// commits. A commit failure leaves everything intact.
func (r *firestorePurgeRepository) PurgeAccount(ctx context.Context, accountID string) (*PurgeResult, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for PurgeAccount operation")
	}

	batch := r.client.Batch()
	result := &PurgeResult{}
	counters := map[string]*int{
		patientsCollection:     &result.Patients,
		appointmentsCollection: &result.Appointments,
		usersCollection:        &result.Users,
		invoicesCollection:     &result.Invoices,
		filesCollection:        &result.Files,
	}

	for _, coll := range purgedCollections {
		refs, err := r.collectRefs(ctx, coll, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to collect %s for account '%s': %w", coll, accountID, err)
		}
		for _, ref := range refs {
			batch.Delete(ref)
		}
		*counters[coll] += len(refs)
		result.Total += len(refs)
	}

	batch.Delete(r.client.Collection(accountsCollection).Doc(accountID))
	result.Total++

	if _, err := batch.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit purge batch for account '%s': %w", accountID, err)
	}

	r.logger.Info("account purge batch committed",
		zap.String("accountId", accountID),
		zap.Int("patients", result.Patients),
		zap.Int("appointments", result.Appointments),
		zap.Int("users", result.Users),
		zap.Int("invoices", result.Invoices),
		zap.Int("files", result.Files),
		zap.Int("total", result.Total),
	)
	return result, nil
}

func (r *firestorePurgeRepository) collectRefs(ctx context.Context, collection, accountID string) ([]*firestore.DocumentRef, error) {
	iter := r.client.Collection(collection).
		Where("accountId", "==", accountID).
		Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		refs = append(refs, doc.Ref)
	}
	return refs, nil
}
