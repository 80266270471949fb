package db

import (
	"context"

	"ixiclinic-admin-go/internal/models"
)

// AccountRepository defines the interface for tenant account storage.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) (string, error) // Returns new account ID
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error) // ordered createdAt desc
	ListByStatus(ctx context.Context, status models.SubscriptionStatus) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	// UpdateFields applies a partial update by field path (dotted for nested
	// billingInfo fields), used by the membership operations.
	UpdateFields(ctx context.Context, accountID string, fields map[string]interface{}) error
}

// PatientRepository reads patients of one account, trying the sub-collection
// layout first and falling back to the legacy flat collection.
type PatientRepository interface {
	ListByAccount(ctx context.Context, accountID string) ([]*models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) (string, error)
}

// ClinicUserRepository reads a tenant's staff users (dual-path like patients).
type ClinicUserRepository interface {
	ListByAccount(ctx context.Context, accountID string) ([]*models.ClinicUser, error)
	Create(ctx context.Context, user *models.ClinicUser) (string, error)
}

// AppointmentRepository reads a tenant's appointments (dual-path; capped at
// the 100 most recent, matching the dashboard).
type AppointmentRepository interface {
	ListByAccount(ctx context.Context, accountID string) ([]*models.Appointment, error)
}

// InvoiceRepository reads a tenant's invoices from the flat collection.
type InvoiceRepository interface {
	ListByAccount(ctx context.Context, accountID string) ([]*models.Invoice, error)
}

// PurgeResult reports what a cascade deletion removed, per collection.
type PurgeResult struct {
	Patients     int `json:"patients"`
	Appointments int `json:"appointments"`
	Users        int `json:"users"`
	Invoices     int `json:"invoices"`
	Files        int `json:"files"`
	Total        int `json:"total"` // includes the account document
}

// PurgeRepository removes an account and every dependent document in a single
// atomic batch: all writes commit or none do.
type PurgeRepository interface {
	PurgeAccount(ctx context.Context, accountID string) (*PurgeResult, error)
}

// AdminActionRepository stores the administrative audit trail.
type AdminActionRepository interface {
	Create(ctx context.Context, action *models.AdminAction) error
	ListByAccount(ctx context.Context, accountID string) ([]*models.AdminAction, error)
}

// AlertRepository reads and resolves system alerts.
type AlertRepository interface {
	ListUnresolved(ctx context.Context) ([]*models.SystemAlert, error)
	Resolve(ctx context.Context, alertID string) error
}
