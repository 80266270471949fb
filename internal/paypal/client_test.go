package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePayPal struct {
	tokenRequests int32
	mux           *http.ServeMux
	server        *httptest.Server
}

func newFakePayPal(t *testing.T) *fakePayPal {
	t.Helper()
	f := &fakePayPal{mux: http.NewServeMux()}
	f.mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.tokenRequests, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "test-client" || pass != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "token-abc",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	})
	f.server = httptest.NewServer(f.mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakePayPal) client() *Client {
	c := NewClient(f.server.URL, "test-client", "test-secret", zap.NewNop())
	c.httpClient.SetRetryCount(0)
	return c
}

func TestTokenCachedAcrossCalls(t *testing.T) {
	f := newFakePayPal(t)
	f.mux.HandleFunc("/v1/billing/plans/P-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("PayPal-Request-Id"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Plan{ID: "P-1", Name: "Clinic Pro Monthly", Status: "ACTIVE"})
	})

	c := f.client()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		plan, err := c.GetPlan(ctx, "P-1")
		require.NoError(t, err)
		assert.Equal(t, "P-1", plan.ID)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.tokenRequests))
}

func TestListPlansWalksPages(t *testing.T) {
	f := newFakePayPal(t)
	f.mux.HandleFunc("/v1/billing/plans", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("page_size"))
		page := r.URL.Query().Get("page")
		resp := planListResponse{TotalPages: 2}
		switch page {
		case "1":
			resp.Plans = []Plan{{ID: "P-1"}, {ID: "P-2"}}
		case "2":
			resp.Plans = []Plan{{ID: "P-3"}}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	plans, err := f.client().ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "P-3", plans[2].ID)
}

func TestUpdatePlanPricingSendsPatch(t *testing.T) {
	f := newFakePayPal(t)
	f.mux.HandleFunc("/v1/billing/plans/P-1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)

		var ops []patchOp
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ops))
		require.Len(t, ops, 1)
		assert.Equal(t, "replace", ops[0].Op)
		assert.Equal(t, "/billing_cycles/@sequence==1/pricing_scheme/fixed_price", ops[0].Path)

		value := ops[0].Value.(map[string]interface{})
		assert.Equal(t, "USD", value["currency_code"])
		assert.Equal(t, "45.50", value["value"])

		w.WriteHeader(http.StatusNoContent)
	})

	err := f.client().UpdatePlanPricing(context.Background(), "P-1", 45.5, "USD")
	assert.NoError(t, err)
}

func TestSubscriptionLifecycleSendsReason(t *testing.T) {
	f := newFakePayPal(t)
	f.mux.HandleFunc("/v1/billing/subscriptions/S-1/suspend", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "payment overdue", body["reason"])
		w.WriteHeader(http.StatusNoContent)
	})

	err := f.client().SuspendSubscription(context.Background(), "S-1", "payment overdue")
	assert.NoError(t, err)
}

func TestReviseSubscriptionBody(t *testing.T) {
	f := newFakePayPal(t)
	f.mux.HandleFunc("/v1/billing/subscriptions/S-1/revise", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "P-NEW", body["plan_id"])
		appCtx := body["application_context"].(map[string]interface{})
		assert.Equal(t, "SUBSCRIBE_NOW", appCtx["user_action"])
		w.WriteHeader(http.StatusOK)
	})

	err := f.client().ReviseSubscription(context.Background(), "S-1", "P-NEW")
	assert.NoError(t, err)
}

func TestNotFoundMapsToErrNotFound(t *testing.T) {
	f := newFakePayPal(t)
	f.mux.HandleFunc("/v1/billing/subscriptions/S-MISSING", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := f.client().GetSubscription(context.Background(), "S-MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIErrorSurfacesNameAndMessage(t *testing.T) {
	f := newFakePayPal(t)
	f.mux.HandleFunc("/v1/billing/subscriptions/S-1/cancel", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(errorResponse{
			Name:    "UNPROCESSABLE_ENTITY",
			Message: "subscription status does not allow cancellation",
		})
	})

	err := f.client().CancelSubscription(context.Background(), "S-1", "cleanup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNPROCESSABLE_ENTITY")
}

func TestSubscriptionHelpers(t *testing.T) {
	active := Subscription{Status: "ACTIVE"}
	suspended := Subscription{Status: "SUSPENDED"}
	assert.True(t, active.IsActive())
	assert.False(t, suspended.IsActive())

	assert.False(t, (&Subscription{}).HasPaymentIssues())
	assert.True(t, (&Subscription{BillingInfo: &BillingInfo{FailedPaymentsCount: 1}}).HasPaymentIssues())
	assert.True(t, (&Subscription{BillingInfo: &BillingInfo{
		OutstandingBalance: &Money{Value: "12.50"},
	}}).HasPaymentIssues())
	assert.False(t, (&Subscription{BillingInfo: &BillingInfo{
		OutstandingBalance: &Money{Value: "0.00"},
	}}).HasPaymentIssues())
}

func TestRegularPrice(t *testing.T) {
	plan := Plan{BillingCycles: []BillingCycle{
		{TenureType: "TRIAL", Sequence: 0},
		{TenureType: "REGULAR", Sequence: 1, PricingScheme: &PricingScheme{
			FixedPrice: &Money{CurrencyCode: "USD", Value: "45.00"},
		}},
	}}
	money := plan.RegularPrice()
	require.NotNil(t, money)
	assert.Equal(t, "45.00", money.Value)

	assert.Nil(t, (&Plan{}).RegularPrice())
}
