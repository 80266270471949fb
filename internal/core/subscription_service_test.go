package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/models"
	"ixiclinic-admin-go/internal/paypal"
)

// MockSubscriptionProvider is a mock implementation of SubscriptionProvider.
type MockSubscriptionProvider struct {
	mock.Mock
}

func (m *MockSubscriptionProvider) ListSubscriptions(ctx context.Context, planIDs []string, status string) ([]paypal.Subscription, error) {
	args := m.Called(ctx, planIDs, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]paypal.Subscription), args.Error(1)
}

func (m *MockSubscriptionProvider) GetSubscription(ctx context.Context, subscriptionID string) (*paypal.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.Subscription), args.Error(1)
}

func (m *MockSubscriptionProvider) CancelSubscription(ctx context.Context, subscriptionID, reason string) error {
	args := m.Called(ctx, subscriptionID, reason)
	return args.Error(0)
}

func (m *MockSubscriptionProvider) SuspendSubscription(ctx context.Context, subscriptionID, reason string) error {
	args := m.Called(ctx, subscriptionID, reason)
	return args.Error(0)
}

func (m *MockSubscriptionProvider) ActivateSubscription(ctx context.Context, subscriptionID, reason string) error {
	args := m.Called(ctx, subscriptionID, reason)
	return args.Error(0)
}

func (m *MockSubscriptionProvider) ReviseSubscription(ctx context.Context, subscriptionID, planID string) error {
	args := m.Called(ctx, subscriptionID, planID)
	return args.Error(0)
}

func (m *MockSubscriptionProvider) ListTransactions(ctx context.Context, subscriptionID string, window paypal.TransactionWindow) ([]paypal.Transaction, error) {
	args := m.Called(ctx, subscriptionID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]paypal.Transaction), args.Error(1)
}

func (m *MockSubscriptionProvider) ListWebhookEvents(ctx context.Context, pageSize int) ([]paypal.WebhookEvent, error) {
	args := m.Called(ctx, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]paypal.WebhookEvent), args.Error(1)
}

func (m *MockSubscriptionProvider) GetWebhookEvent(ctx context.Context, eventID string) (*paypal.WebhookEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.WebhookEvent), args.Error(1)
}

func newSubscriptionFixture(provider *MockSubscriptionProvider) (SubscriptionService, *MockAdminActionRepository) {
	actionRepo := new(MockAdminActionRepository)
	svc := NewSubscriptionService(provider, map[string]string{"clinic-pro-monthly": "P-CPM"}, NewAuditService(actionRepo), zap.NewNop())
	return svc, actionRepo
}

func TestLocalSubscriptionStatusMapping(t *testing.T) {
	cases := map[string]models.SubscriptionStatus{
		"ACTIVE":           models.SubscriptionActive,
		"SUSPENDED":        models.SubscriptionSuspended,
		"CANCELLED":        models.SubscriptionCancelled,
		"EXPIRED":          models.SubscriptionCancelled,
		"APPROVAL_PENDING": models.SubscriptionPending,
		"APPROVED":         models.SubscriptionPending,
		"SOMETHING_NEW":    models.SubscriptionPending,
	}
	for provider, want := range cases {
		assert.Equal(t, want, LocalSubscriptionStatus(provider), "status %s", provider)
	}
}

func TestProblemSubscriptionsFilters(t *testing.T) {
	provider := new(MockSubscriptionProvider)
	svc, _ := newSubscriptionFixture(provider)

	healthy := paypal.Subscription{ID: "S-1", Status: "ACTIVE", BillingInfo: &paypal.BillingInfo{}}
	failing := paypal.Subscription{ID: "S-2", Status: "ACTIVE", BillingInfo: &paypal.BillingInfo{FailedPaymentsCount: 2}}
	owing := paypal.Subscription{ID: "S-3", Status: "SUSPENDED", BillingInfo: &paypal.BillingInfo{
		OutstandingBalance: &paypal.Money{CurrencyCode: "USD", Value: "45.00"},
	}}
	noInfo := paypal.Subscription{ID: "S-4", Status: "ACTIVE"}

	provider.On("ListSubscriptions", mock.Anything, []string{"P-CPM"}, "").
		Return([]paypal.Subscription{healthy, failing, owing, noInfo}, nil)

	problems, err := svc.ProblemSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Equal(t, "S-2", problems[0].ID)
	assert.Equal(t, "S-3", problems[1].ID)
}

func TestCancelSubscriptionRecordsAudit(t *testing.T) {
	provider := new(MockSubscriptionProvider)
	svc, actionRepo := newSubscriptionFixture(provider)

	provider.On("CancelSubscription", mock.Anything, "S-1", "fraud").Return(nil)
	actionRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.AdminAction) bool {
		return a.Action == "cancel_subscription" &&
			a.Details["subscriptionId"] == "S-1" &&
			a.Details["reason"] == "fraud"
	})).Return(nil)

	err := svc.CancelSubscription(context.Background(), "admin-1", "S-1", "fraud")
	require.NoError(t, err)
	provider.AssertExpectations(t)
	actionRepo.AssertExpectations(t)
}

func TestCancelSubscriptionProviderFailureSkipsAudit(t *testing.T) {
	provider := new(MockSubscriptionProvider)
	svc, actionRepo := newSubscriptionFixture(provider)

	provider.On("CancelSubscription", mock.Anything, "S-1", "fraud").Return(errors.New("provider down"))

	err := svc.CancelSubscription(context.Background(), "admin-1", "S-1", "fraud")
	require.Error(t, err)
	actionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCancelSubscriptionAuditFailureSwallowed(t *testing.T) {
	provider := new(MockSubscriptionProvider)
	svc, actionRepo := newSubscriptionFixture(provider)

	provider.On("CancelSubscription", mock.Anything, "S-1", "churn").Return(nil)
	actionRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("firestore down"))

	err := svc.CancelSubscription(context.Background(), "admin-1", "S-1", "churn")
	assert.NoError(t, err)
}

func TestListTransactionsDefaultsWindow(t *testing.T) {
	provider := new(MockSubscriptionProvider)
	svc, _ := newSubscriptionFixture(provider)

	provider.On("ListTransactions", mock.Anything, "S-1", mock.MatchedBy(func(w paypal.TransactionWindow) bool {
		days := w.End.Sub(w.Start).Hours() / 24
		return days > 89 && days < 91
	})).Return([]paypal.Transaction{{ID: "T-1"}}, nil)

	txns, err := svc.ListTransactions(context.Background(), "S-1", 0)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
	provider.AssertExpectations(t)
}

func TestReviseSubscription(t *testing.T) {
	provider := new(MockSubscriptionProvider)
	svc, actionRepo := newSubscriptionFixture(provider)

	provider.On("ReviseSubscription", mock.Anything, "S-1", "P-NEW").Return(nil)
	actionRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.AdminAction) bool {
		return a.Action == "revise_subscription"
	})).Return(nil)

	err := svc.ReviseSubscription(context.Background(), "admin-1", "S-1", "P-NEW")
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestUsageMetrics(t *testing.T) {
	provider := new(MockSubscriptionProvider)
	svc, _ := newSubscriptionFixture(provider)

	lastPayment := func(value string) *paypal.BillingInfo {
		info := &paypal.BillingInfo{}
		info.LastPayment = &struct {
			Amount *paypal.Money `json:"amount,omitempty"`
			Time   string        `json:"time,omitempty"`
		}{Amount: &paypal.Money{CurrencyCode: "USD", Value: value}}
		return info
	}

	subs := []paypal.Subscription{
		{ID: "S-1", PlanID: "P-CPM", Status: "ACTIVE", BillingInfo: lastPayment("45.00")},
		{ID: "S-2", PlanID: "P-CPM", Status: "ACTIVE", BillingInfo: lastPayment("45.00")},
		{ID: "S-3", PlanID: "P-UNKNOWN", Status: "SUSPENDED", BillingInfo: &paypal.BillingInfo{FailedPaymentsCount: 3}},
		{ID: "S-4", PlanID: "P-CPM", Status: "CANCELLED", BillingInfo: lastPayment("45.00")},
	}
	provider.On("ListSubscriptions", mock.Anything, []string{"P-CPM"}, "").Return(subs, nil)

	usage, err := svc.UsageMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, usage.Total)
	assert.Equal(t, 2, usage.Active)
	assert.Equal(t, 1, usage.Problems)
	assert.Equal(t, 3, usage.ByPlan["clinic-pro-monthly"])
	assert.Equal(t, 1, usage.ByPlan["P-UNKNOWN"])
	assert.InDelta(t, 90.0, usage.MonthlyRevenue, 0.001)
}
