package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/models"
	"ixiclinic-admin-go/internal/paypal"
	"ixiclinic-admin-go/internal/plans"
)

// MockPlanProvider is a mock implementation of PlanProvider.
type MockPlanProvider struct {
	mock.Mock
}

func (m *MockPlanProvider) ListPlans(ctx context.Context) ([]paypal.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]paypal.Plan), args.Error(1)
}

func (m *MockPlanProvider) GetPlan(ctx context.Context, planID string) (*paypal.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.Plan), args.Error(1)
}

func (m *MockPlanProvider) UpdatePlanPricing(ctx context.Context, planID string, price float64, currency string) error {
	args := m.Called(ctx, planID, price, currency)
	return args.Error(0)
}

func remotePlan(id, name, price string) paypal.Plan {
	return paypal.Plan{
		ID:     id,
		Name:   name,
		Status: "ACTIVE",
		BillingCycles: []paypal.BillingCycle{{
			TenureType: "REGULAR",
			Sequence:   1,
			PricingScheme: &paypal.PricingScheme{
				FixedPrice: &paypal.Money{CurrencyCode: "USD", Value: price},
			},
		}},
	}
}

func newPricingFixture(provider *MockPlanProvider, planIDs map[string]string) (PricingService, *MockAdminActionRepository) {
	actionRepo := new(MockAdminActionRepository)
	svc := NewPricingService(plans.NewCatalog(), provider, planIDs, NewAuditService(actionRepo), zap.NewNop())
	return svc, actionRepo
}

func TestReconcileReportsDifferences(t *testing.T) {
	provider := new(MockPlanProvider)
	svc, _ := newPricingFixture(provider, map[string]string{
		"clinic-pro-monthly":   "P-CPM",
		"personal-pro-monthly": "P-PPM",
	})

	// clinic-pro-monthly is 45 locally; remote says 50. personal-pro-monthly
	// matches at 25.
	provider.On("ListPlans", mock.Anything).Return([]paypal.Plan{
		remotePlan("P-CPM", "Clinic Pro Monthly", "50.00"),
		remotePlan("P-PPM", "Personal Pro Monthly", "25.00"),
	}, nil)

	report, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Compared)
	assert.Equal(t, 1, report.InSync)
	assert.Equal(t, 50.0, report.SyncScore)
	require.Len(t, report.Differences, 1)

	diff := report.Differences[0]
	assert.Equal(t, "clinic-pro-monthly", diff.LocalPlan)
	assert.Equal(t, "P-CPM", diff.RemotePlanID)
	assert.Equal(t, 45.0, diff.LocalPrice)
	assert.Equal(t, 50.0, diff.RemotePrice)
	assert.Equal(t, -5.0, diff.Delta)
}

func TestReconcileToleratesSubCentDrift(t *testing.T) {
	provider := new(MockPlanProvider)
	svc, _ := newPricingFixture(provider, map[string]string{"clinic-pro-monthly": "P-CPM"})

	provider.On("ListPlans", mock.Anything).Return([]paypal.Plan{
		remotePlan("P-CPM", "Clinic Pro Monthly", "45.005"),
	}, nil)

	report, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.InSync)
	assert.Empty(t, report.Differences)
}

func TestReconcileFallsBackToNameMatching(t *testing.T) {
	provider := new(MockPlanProvider)
	svc, _ := newPricingFixture(provider, nil) // no configured mapping at all

	provider.On("ListPlans", mock.Anything).Return([]paypal.Plan{
		remotePlan("P-X", "Clinic Pro (Monthly)", "99.00"),
	}, nil)

	report, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Differences, 1)
	assert.Equal(t, "clinic-pro-monthly", report.Differences[0].LocalPlan)
	assert.Equal(t, "P-X", report.Differences[0].RemotePlanID)
	assert.NotEmpty(t, report.Warnings)
}

func TestReconcileWarnsOnMissingMappedPlan(t *testing.T) {
	provider := new(MockPlanProvider)
	svc, _ := newPricingFixture(provider, map[string]string{"clinic-pro-monthly": "P-GONE"})

	provider.On("ListPlans", mock.Anything).Return([]paypal.Plan{}, nil)

	report, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Compared)
	assert.NotEmpty(t, report.Warnings)
}

func TestApplyDifferencesPushesLocalPrices(t *testing.T) {
	provider := new(MockPlanProvider)
	svc, actionRepo := newPricingFixture(provider, map[string]string{"clinic-pro-monthly": "P-CPM"})

	provider.On("ListPlans", mock.Anything).Return([]paypal.Plan{
		remotePlan("P-CPM", "Clinic Pro Monthly", "50.00"),
	}, nil)
	provider.On("UpdatePlanPricing", mock.Anything, "P-CPM", 45.0, "USD").Return(nil)
	actionRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.AdminAction) bool {
		return a.Action == "apply_price_differences"
	})).Return(nil)

	report, err := svc.ApplyDifferences(context.Background(), "admin-1")
	require.NoError(t, err)
	require.Len(t, report.Differences, 1)
	provider.AssertExpectations(t)
	actionRepo.AssertExpectations(t)
}

func TestUpdatePlanPriceLocalOnly(t *testing.T) {
	provider := new(MockPlanProvider)
	svc, actionRepo := newPricingFixture(provider, map[string]string{"clinic-pro-monthly": "P-CPM"})
	actionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	plan, err := svc.UpdatePlanPrice(context.Background(), "admin-1", "clinic-pro-monthly", models.UpdatePlanPriceRequest{
		Price: 48,
	})
	require.NoError(t, err)
	assert.Equal(t, 48.0, plan.Price)
	provider.AssertNotCalled(t, "UpdatePlanPricing", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePlanPricePushesRemote(t *testing.T) {
	provider := new(MockPlanProvider)
	svc, actionRepo := newPricingFixture(provider, map[string]string{"clinic-pro-monthly": "P-CPM"})

	provider.On("UpdatePlanPricing", mock.Anything, "P-CPM", 48.0, "USD").Return(nil)
	actionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.UpdatePlanPrice(context.Background(), "admin-1", "clinic-pro-monthly", models.UpdatePlanPriceRequest{
		Price: 48, PushRemote: true,
	})
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestUpdatePlanPriceUnknownPlan(t *testing.T) {
	provider := new(MockPlanProvider)
	svc, _ := newPricingFixture(provider, nil)

	_, err := svc.UpdatePlanPrice(context.Background(), "admin-1", "no-such-plan", models.UpdatePlanPriceRequest{Price: 10})
	assert.ErrorIs(t, err, plans.ErrPlanNotFound)
}
