package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/models"
)

const (
	invoicesCollection = "invoices"
	filesCollection    = "files"
)

// firestoreInvoiceRepository implements InvoiceRepository. Invoices only ever
// lived in the flat collection, so there is no sub-collection path here.
type firestoreInvoiceRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreInvoiceRepository creates a new invoice repository.
func NewFirestoreInvoiceRepository(client *firestore.Client, logger *zap.Logger) InvoiceRepository {
	return &firestoreInvoiceRepository{client: client, logger: logger}
}

// ListByAccount returns the invoices of one account, newest first.
func (r *firestoreInvoiceRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Invoice, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for ListByAccount operation")
	}
	query := r.client.Collection(invoicesCollection).
		Where("accountId", "==", accountID).
		OrderBy("issuedAt", firestore.Desc)
	invoices, err := drainDocs(r.logger, query.Documents(ctx), func(inv *models.Invoice, id string) { inv.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for account '%s': %w", accountID, err)
	}
	return invoices, nil
}
