package models

import "time"

// AccountType distinguishes the kind of practice a tenant runs.
type AccountType string

const (
	AccountTypePersonal AccountType = "personal"
	AccountTypeClinic   AccountType = "clinic"
	AccountTypeHospital AccountType = "hospital"
)

// SubscriptionStatus is the local billing state of an account.
type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionSuspended SubscriptionStatus = "suspended"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPending   SubscriptionStatus = "pending"
)

// AccountSettings holds the practice-level configuration a tenant manages itself.
type AccountSettings struct {
	CenterName string `json:"centerName,omitempty" firestore:"centerName,omitempty"`
	DoctorName string `json:"doctorName,omitempty" firestore:"doctorName,omitempty"`
	Address    string `json:"address,omitempty" firestore:"address,omitempty"`
	Phone      string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Currency   string `json:"currency,omitempty" firestore:"currency,omitempty"`
}

// BillingInfo mirrors the billing state stored on the account document.
type BillingInfo struct {
	PlanName           string             `json:"planName,omitempty" firestore:"planName,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus,omitempty" firestore:"subscriptionStatus,omitempty"`
	MembershipType     string             `json:"membershipType,omitempty" firestore:"membershipType,omitempty"` // e.g. "paid", "free"
	SubscriptionID     string             `json:"subscriptionId,omitempty" firestore:"subscriptionId,omitempty"` // PayPal subscription ID
	TrialEndDate       *time.Time         `json:"trialEndDate,omitempty" firestore:"trialEndDate,omitempty"`
	NextPaymentDate    *time.Time         `json:"nextPaymentDate,omitempty" firestore:"nextPaymentDate,omitempty"`
	AdminNotes         string             `json:"adminNotes,omitempty" firestore:"adminNotes,omitempty"`
}

// Account is a tenant record: one clinic or practice's isolated data partition.
type Account struct {
	ID          string          `json:"id" firestore:"-"` // Document ID
	Email       string          `json:"email" firestore:"email"`
	Name        string          `json:"name,omitempty" firestore:"name,omitempty"`
	Type        AccountType     `json:"type" firestore:"type"`
	Settings    AccountSettings `json:"settings,omitempty" firestore:"settings,omitempty"`
	BillingInfo BillingInfo     `json:"billingInfo,omitempty" firestore:"billingInfo,omitempty"`
	OwnerID     string          `json:"ownerId,omitempty" firestore:"ownerId,omitempty"` // Identity-provider (Firebase Auth) UID of the owner
	OwnerEmail  string          `json:"ownerEmail,omitempty" firestore:"ownerEmail,omitempty"`
	IsActive    bool            `json:"isActive" firestore:"isActive"`
	CreatedAt   time.Time       `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" firestore:"updatedAt"`
}
