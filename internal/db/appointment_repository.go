package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/models"
)

const appointmentsCollection = "appointments"

// appointmentListLimit caps how many appointments a single account view
// fetches; the dashboard only shows the most recent ones.
const appointmentListLimit = 100

// firestoreAppointmentRepository implements AppointmentRepository with the
// dual-path read (sub-collection, then legacy flat collection).
type firestoreAppointmentRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreAppointmentRepository creates a new appointment repository.
func NewFirestoreAppointmentRepository(client *firestore.Client, logger *zap.Logger) AppointmentRepository {
	return &firestoreAppointmentRepository{client: client, logger: logger}
}

func setAppointmentID(a *models.Appointment, id string) { a.ID = id }

// ListByAccount returns up to the 100 most recent appointments of one account.
func (r *firestoreAppointmentRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Appointment, error) {
	if accountID == "" {
		return nil, errors.New("accountID cannot be empty for ListByAccount operation")
	}

	subQuery := r.client.Collection(accountsCollection).Doc(accountID).
		Collection(appointmentsCollection).
		OrderBy("date", firestore.Desc).
		Limit(appointmentListLimit)
	appointments, err := drainDocs(r.logger, subQuery.Documents(ctx), setAppointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments (sub-collection) for account '%s': %w", accountID, err)
	}
	if len(appointments) > 0 {
		return appointments, nil
	}

	flatQuery := r.client.Collection(appointmentsCollection).
		Where("accountId", "==", accountID).
		OrderBy("date", firestore.Desc).
		Limit(appointmentListLimit)
	appointments, err = drainDocs(r.logger, flatQuery.Documents(ctx), setAppointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments (flat collection) for account '%s': %w", accountID, err)
	}
	return appointments, nil
}
