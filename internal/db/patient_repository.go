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

const patientsCollection = "patients"

// firestorePatientRepository implements PatientRepository using Firestore.
//
// Reads are dual-path for legacy compatibility: the sub-collection
// accounts/{id}/patients is tried first; when it is empty the legacy flat
// "patients" collection is queried by accountId.
type firestorePatientRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestorePatientRepository creates a new patient repository.
func NewFirestorePatientRepository(client *firestore.Client, logger *zap.Logger) PatientRepository {
	return &firestorePatientRepository{client: client, logger: logger}
}

func setPatientID(p *models.Patient, id string) { p.ID = id }

// ListByAccount returns the patients of one account, newest first.
func (r *firestorePatientRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Patient, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for ListByAccount operation")
	}

	subQuery := r.client.Collection(accountsCollection).Doc(accountID).
		Collection(patientsCollection).
		OrderBy("createdAt", firestore.Desc)
	patients, err := drainDocs(r.logger, subQuery.Documents(ctx), setPatientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients (sub-collection) for account '%s': %w", accountID, err)
	}
	if len(patients) > 0 {
		return patients, nil
	}

	// Legacy layout: flat collection filtered by foreign key.
	flatQuery := r.client.Collection(patientsCollection).
		Where("accountId", "==", accountID).
		OrderBy("createdAt", firestore.Desc)
	patients, err = drainDocs(r.logger, flatQuery.Documents(ctx), setPatientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients (flat collection) for account '%s': %w", accountID, err)
	}
	return patients, nil
}

// Create adds a patient to the legacy flat collection, which both read paths
// and the cascade deletion cover.
func (r *firestorePatientRepository) Create(ctx context.Context, patient *models.Patient) (string, error) {
	if patient.AccountID == "" {
		return "", errors.New("patient accountId cannot be empty")
	}
	docRef := r.client.Collection(patientsCollection).NewDoc()
	patient.ID = docRef.ID
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = time.Now().UTC()
	}
	if _, err := docRef.Create(ctx, patient); err != nil {
		return "", fmt.Errorf("failed to create patient: %w", err)
	}
	return docRef.ID, nil
}
