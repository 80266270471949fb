package models

import "time"

// Patient is a clinic patient scoped to an account.
// Legacy data lives in a flat "patients" collection keyed by accountId; newer
// data lives under accounts/{id}/patients. Both decode to this shape.
type Patient struct {
	ID        string     `json:"id" firestore:"-"`
	AccountID string     `json:"accountId" firestore:"accountId"`
	FirstName string     `json:"firstName,omitempty" firestore:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty" firestore:"lastName,omitempty"`
	Email     string     `json:"email,omitempty" firestore:"email,omitempty"`
	Phone     string     `json:"phone,omitempty" firestore:"phone,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty" firestore:"birthDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt"`
}

// UserRole is the role of a clinic staff member within a tenant.
type UserRole string

const (
	RoleDoctor UserRole = "doctor"
	RoleStaff  UserRole = "staff"
	RoleAdmin  UserRole = "admin"
)

// ClinicUser is a staff member of a tenant (doctor, assistant, admin).
type ClinicUser struct {
	ID        string    `json:"id" firestore:"-"`
	AccountID string    `json:"accountId" firestore:"accountId"`
	Email     string    `json:"email" firestore:"email"`
	Name      string    `json:"name,omitempty" firestore:"name,omitempty"`
	Role      UserRole  `json:"role,omitempty" firestore:"role,omitempty"`
	IsActive  bool      `json:"isActive" firestore:"isActive"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// Appointment is a scheduled visit, scoped to an account and a patient.
type Appointment struct {
	ID              string    `json:"id" firestore:"-"`
	AccountID       string    `json:"accountId" firestore:"accountId"`
	PatientID       string    `json:"patientId,omitempty" firestore:"patientId,omitempty"`
	Date            time.Time `json:"date" firestore:"date"`
	DurationMinutes int       `json:"durationMinutes,omitempty" firestore:"durationMinutes,omitempty"`
	Status          string    `json:"status,omitempty" firestore:"status,omitempty"` // e.g. "scheduled", "completed", "cancelled"
	Reason          string    `json:"reason,omitempty" firestore:"reason,omitempty"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
}

// Invoice is a billing document issued by a tenant to a patient.
type Invoice struct {
	ID        string    `json:"id" firestore:"-"`
	AccountID string    `json:"accountId" firestore:"accountId"`
	Number    string    `json:"number,omitempty" firestore:"number,omitempty"`
	Total     float64   `json:"total" firestore:"total"`
	Currency  string    `json:"currency,omitempty" firestore:"currency,omitempty"`
	Status    string    `json:"status,omitempty" firestore:"status,omitempty"` // e.g. "draft", "issued", "paid"
	IssuedAt  time.Time `json:"issuedAt" firestore:"issuedAt"`
}

// StoredFile is an uploaded document attached to a tenant's records.
type StoredFile struct {
	ID          string    `json:"id" firestore:"-"`
	AccountID   string    `json:"accountId" firestore:"accountId"`
	Name        string    `json:"name,omitempty" firestore:"name,omitempty"`
	Path        string    `json:"path,omitempty" firestore:"path,omitempty"`
	Size        int64     `json:"size,omitempty" firestore:"size,omitempty"`
	ContentType string    `json:"contentType,omitempty" firestore:"contentType,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt" firestore:"uploadedAt"`
}
