package core

import (
	"context"

	"ixiclinic-admin-go/internal/db"
	"ixiclinic-admin-go/internal/models"
	"ixiclinic-admin-go/internal/paypal"
	"ixiclinic-admin-go/internal/plans"
)

// AccountService manages tenant accounts and their lifecycle.
type AccountService interface {
	CreateAccount(ctx context.Context, adminID string, req models.CreateAccountRequest) (*models.Account, error)
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	ListAccountsByStatus(ctx context.Context, status models.SubscriptionStatus) ([]*models.Account, error)
	UpdateAccount(ctx context.Context, adminID, accountID string, req models.UpdateAccountRequest) (*models.Account, error)

	// DeleteAccountCompletely removes the account and every dependent record
	// in one atomic batch. The caller must acknowledge by echoing the account
	// ID being destroyed.
	DeleteAccountCompletely(ctx context.Context, adminID, accountID, acknowledge string) (*db.PurgeResult, error)

	GetAccountSummary(ctx context.Context, accountID string) (*models.AccountSummary, error)
	ListPatients(ctx context.Context, accountID string) ([]*models.Patient, error)
	ListUsers(ctx context.Context, accountID string) ([]*models.ClinicUser, error)
	ListAppointments(ctx context.Context, accountID string) ([]*models.Appointment, error)
	ListInvoices(ctx context.Context, accountID string) ([]*models.Invoice, error)

	AssignFreeMembership(ctx context.Context, adminID, accountID string, req models.FreeMembershipRequest) error
	ExtendTrial(ctx context.Context, adminID, accountID string, req models.ExtendRequest) error
	ExtendMembership(ctx context.Context, adminID, accountID string, req models.ExtendRequest) error
	ChangePlan(ctx context.Context, adminID, accountID string, req models.ChangePlanRequest) error
	AssignOwner(ctx context.Context, adminID, accountID string, req models.AssignOwnerRequest) error
	UnassignOwner(ctx context.Context, adminID, accountID string, req models.UnassignOwnerRequest) error
}

// PriceDifference is one local/remote price mismatch found by reconciliation.
type PriceDifference struct {
	LocalPlan   string  `json:"localPlan"`
	RemotePlanID string `json:"remotePlanId"`
	RemoteName  string  `json:"remoteName,omitempty"`
	LocalPrice  float64 `json:"localPrice"`
	RemotePrice float64 `json:"remotePrice"`
	Delta       float64 `json:"delta"`
}

// ReconcileReport summarizes a pricing reconciliation run. Differences are
// reported, never auto-corrected.
type ReconcileReport struct {
	Compared    int               `json:"compared"`
	InSync      int               `json:"inSync"`
	SyncScore   float64           `json:"syncScore"` // percent
	Differences []PriceDifference `json:"differences"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// PricingService exposes the plan catalog and keeps it reconciled with the
// payment provider.
type PricingService interface {
	ListPlans(ctx context.Context, planType, tier string) []plans.Plan
	GetPlan(ctx context.Context, name string) (plans.Plan, error)
	EffectivePrice(ctx context.Context, name string, userCount int) (float64, error)
	UpdatePlanPrice(ctx context.Context, adminID, name string, req models.UpdatePlanPriceRequest) (plans.Plan, error)
	Reconcile(ctx context.Context) (*ReconcileReport, error)
	ApplyDifferences(ctx context.Context, adminID string) (*ReconcileReport, error)
}

// SubscriptionUsage summarizes provider-side subscription state across every
// configured plan.
type SubscriptionUsage struct {
	Total          int            `json:"total"`
	Active         int            `json:"active"`
	Problems       int            `json:"problems"`
	ByPlan         map[string]int `json:"byPlan"`
	MonthlyRevenue float64        `json:"monthlyRevenue"`
}

// SubscriptionService exposes the provider-side subscription state.
type SubscriptionService interface {
	ListSubscriptions(ctx context.Context, status string) ([]paypal.Subscription, error)
	ProblemSubscriptions(ctx context.Context) ([]paypal.Subscription, error)
	UsageMetrics(ctx context.Context) (*SubscriptionUsage, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*paypal.Subscription, error)
	CancelSubscription(ctx context.Context, adminID, subscriptionID, reason string) error
	SuspendSubscription(ctx context.Context, adminID, subscriptionID, reason string) error
	ActivateSubscription(ctx context.Context, adminID, subscriptionID, reason string) error
	ReviseSubscription(ctx context.Context, adminID, subscriptionID, planID string) error
	ListTransactions(ctx context.Context, subscriptionID string, days int) ([]paypal.Transaction, error)
	ListWebhookEvents(ctx context.Context, pageSize int) ([]paypal.WebhookEvent, error)
	GetWebhookEvent(ctx context.Context, eventID string) (*paypal.WebhookEvent, error)
}

// MetricsService aggregates cross-tenant numbers for the dashboard.
type MetricsService interface {
	DashboardMetrics(ctx context.Context) (*models.AdminMetrics, error)
	QuickStats(ctx context.Context) (*models.QuickStats, error)
	ListAlerts(ctx context.Context) ([]*models.SystemAlert, error)
	ResolveAlert(ctx context.Context, alertID string) error
}

// AuditService records administrative actions. Recording is best-effort from
// the caller's point of view: services log failures and move on.
type AuditService interface {
	Record(ctx context.Context, action *models.AdminAction) error
	ListByAccount(ctx context.Context, accountID string) ([]*models.AdminAction, error)
}
