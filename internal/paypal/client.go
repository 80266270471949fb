package paypal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tokenExpirySlack is subtracted from the token lifetime so a token is never
// used right at its expiry boundary.
const tokenExpirySlack = 60 * time.Second

// ErrNotFound is returned when PayPal reports a resource does not exist.
var ErrNotFound = errors.New("paypal resource not found")

// Client talks to the PayPal REST API. The OAuth2 access token is fetched
// lazily and cached until shortly before it expires.
type Client struct {
	httpClient   *resty.Client
	clientID     string
	clientSecret string
	logger       *zap.Logger

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a PayPal API client against baseURL (sandbox or live).
func NewClient(baseURL, clientID, clientSecret string, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:   httpClient,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger,
	}
}

// token returns a valid cached access token, fetching a new one when the
// cached token is missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		token := c.accessToken
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	// another goroutine may have refreshed while we waited for the lock
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var tr tokenResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tr).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("failed to request PayPal access token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("PayPal token request failed with status %d", resp.StatusCode())
	}
	if tr.AccessToken == "" {
		return "", errors.New("PayPal token response contained no access token")
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpirySlack)
	c.logger.Debug("PayPal access token refreshed",
		zap.Int("expires_in", tr.ExpiresIn),
	)
	return c.accessToken, nil
}

// request builds an authenticated request with a fresh idempotency key.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	return c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetHeader("PayPal-Request-Id", uuid.NewString()).
		SetError(&errorResponse{}), nil
}

// checkResponse maps an error response body onto a Go error.
func (c *Client) checkResponse(resp *resty.Response, operation string) error {
	if !resp.IsError() {
		return nil
	}
	if resp.StatusCode() == 404 {
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	}
	if apiErr, ok := resp.Error().(*errorResponse); ok && apiErr.Name != "" {
		c.logger.Error("PayPal API returned error",
			zap.String("operation", operation),
			zap.String("name", apiErr.Name),
			zap.String("message", apiErr.Message),
			zap.String("debug_id", apiErr.DebugID),
			zap.Int("status_code", resp.StatusCode()),
		)
		return fmt.Errorf("%s: PayPal error %s: %s", operation, apiErr.Name, apiErr.Message)
	}
	return fmt.Errorf("%s: PayPal returned status %d", operation, resp.StatusCode())
}

// ListPlans returns every billing plan, walking all result pages.
func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	for page := 1; ; page++ {
		req, err := c.request(ctx)
		if err != nil {
			return nil, err
		}

		var body planListResponse
		resp, err := req.
			SetQueryParams(map[string]string{
				"page_size":      "20",
				"page":           strconv.Itoa(page),
				"total_required": "true",
			}).
			SetResult(&body).
			Get("/v1/billing/plans")
		if err != nil {
			return nil, fmt.Errorf("failed to list PayPal plans: %w", err)
		}
		if err := c.checkResponse(resp, "list plans"); err != nil {
			return nil, err
		}

		plans = append(plans, body.Plans...)
		if page >= body.TotalPages || len(body.Plans) == 0 {
			break
		}
	}
	return plans, nil
}

// GetPlan returns one billing plan with its billing cycles.
func (c *Client) GetPlan(ctx context.Context, planID string) (*Plan, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var plan Plan
	resp, err := req.
		SetResult(&plan).
		SetPathParam("id", planID).
		Get("/v1/billing/plans/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to get PayPal plan '%s': %w", planID, err)
	}
	if err := c.checkResponse(resp, "get plan"); err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpdatePlanPricing replaces the fixed price of the plan's regular billing
// cycle (sequence 1).
func (c *Client) UpdatePlanPricing(ctx context.Context, planID string, price float64, currency string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	patch := []patchOp{{
		Op:   "replace",
		Path: "/billing_cycles/@sequence==1/pricing_scheme/fixed_price",
		Value: Money{
			CurrencyCode: currency,
			Value:        strconv.FormatFloat(price, 'f', 2, 64),
		},
	}}

	resp, err := req.
		SetBody(patch).
		SetPathParam("id", planID).
		Patch("/v1/billing/plans/{id}")
	if err != nil {
		return fmt.Errorf("failed to update pricing of PayPal plan '%s': %w", planID, err)
	}
	return c.checkResponse(resp, "update plan pricing")
}

// ActivatePlan makes an inactive plan available for new subscriptions.
func (c *Client) ActivatePlan(ctx context.Context, planID string) error {
	return c.postPlanAction(ctx, planID, "activate")
}

// DeactivatePlan stops a plan from accepting new subscriptions.
func (c *Client) DeactivatePlan(ctx context.Context, planID string) error {
	return c.postPlanAction(ctx, planID, "deactivate")
}

func (c *Client) postPlanAction(ctx context.Context, planID, action string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetPathParam("id", planID).
		SetPathParam("action", action).
		Post("/v1/billing/plans/{id}/{action}")
	if err != nil {
		return fmt.Errorf("failed to %s PayPal plan '%s': %w", action, planID, err)
	}
	return c.checkResponse(resp, action+" plan")
}

// ListSubscriptions returns subscriptions across all configured plans,
// optionally filtered by status (empty status means all).
func (c *Client) ListSubscriptions(ctx context.Context, planIDs []string, status string) ([]Subscription, error) {
	var all []Subscription
	for _, planID := range planIDs {
		for page := 1; ; page++ {
			req, err := c.request(ctx)
			if err != nil {
				return nil, err
			}

			req.SetQueryParams(map[string]string{
				"plan_id":   planID,
				"page_size": "20",
				"page":      strconv.Itoa(page),
			})
			if status != "" {
				req.SetQueryParam("status", status)
			}

			var body subscriptionListResponse
			resp, err := req.
				SetResult(&body).
				Get("/v1/billing/subscriptions")
			if err != nil {
				return nil, fmt.Errorf("failed to list PayPal subscriptions for plan '%s': %w", planID, err)
			}
			if err := c.checkResponse(resp, "list subscriptions"); err != nil {
				return nil, err
			}

			all = append(all, body.Subscriptions...)
			if page >= body.TotalPages || len(body.Subscriptions) == 0 {
				break
			}
		}
	}
	return all, nil
}

// GetSubscription returns one subscription with its billing info.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var sub Subscription
	resp, err := req.
		SetResult(&sub).
		SetPathParam("id", subscriptionID).
		Get("/v1/billing/subscriptions/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to get PayPal subscription '%s': %w", subscriptionID, err)
	}
	if err := c.checkResponse(resp, "get subscription"); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CancelSubscription permanently cancels a subscription.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID, reason string) error {
	return c.postSubscriptionAction(ctx, subscriptionID, "cancel", reason)
}

// SuspendSubscription pauses billing on a subscription.
func (c *Client) SuspendSubscription(ctx context.Context, subscriptionID, reason string) error {
	return c.postSubscriptionAction(ctx, subscriptionID, "suspend", reason)
}

// ActivateSubscription resumes billing on a suspended subscription.
func (c *Client) ActivateSubscription(ctx context.Context, subscriptionID, reason string) error {
	return c.postSubscriptionAction(ctx, subscriptionID, "activate", reason)
}

func (c *Client) postSubscriptionAction(ctx context.Context, subscriptionID, action, reason string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetBody(map[string]string{"reason": reason}).
		SetPathParam("id", subscriptionID).
		SetPathParam("action", action).
		Post("/v1/billing/subscriptions/{id}/{action}")
	if err != nil {
		return fmt.Errorf("failed to %s PayPal subscription '%s': %w", action, subscriptionID, err)
	}
	return c.checkResponse(resp, action+" subscription")
}

// ReviseSubscription moves a subscription onto a different plan.
func (c *Client) ReviseSubscription(ctx context.Context, subscriptionID, planID string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetBody(map[string]interface{}{
			"plan_id": planID,
			"application_context": map[string]string{
				"user_action": "SUBSCRIBE_NOW",
			},
		}).
		SetPathParam("id", subscriptionID).
		Post("/v1/billing/subscriptions/{id}/revise")
	if err != nil {
		return fmt.Errorf("failed to revise PayPal subscription '%s': %w", subscriptionID, err)
	}
	return c.checkResponse(resp, "revise subscription")
}

// ListTransactions returns the transaction history of a subscription inside
// the given window.
func (c *Client) ListTransactions(ctx context.Context, subscriptionID string, window TransactionWindow) ([]Transaction, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var body transactionListResponse
	resp, err := req.
		SetQueryParams(map[string]string{
			"start_time": window.Start.UTC().Format(time.RFC3339),
			"end_time":   window.End.UTC().Format(time.RFC3339),
		}).
		SetResult(&body).
		SetPathParam("id", subscriptionID).
		Get("/v1/billing/subscriptions/{id}/transactions")
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions of PayPal subscription '%s': %w", subscriptionID, err)
	}
	if err := c.checkResponse(resp, "list transactions"); err != nil {
		return nil, err
	}
	return body.Transactions, nil
}

// ListWebhookEvents returns recent webhook notifications.
func (c *Client) ListWebhookEvents(ctx context.Context, pageSize int) ([]WebhookEvent, error) {
	if pageSize <= 0 {
		pageSize = 20
	}

	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var body webhookEventListResponse
	resp, err := req.
		SetQueryParam("page_size", strconv.Itoa(pageSize)).
		SetResult(&body).
		Get("/v1/notifications/webhooks-events")
	if err != nil {
		return nil, fmt.Errorf("failed to list PayPal webhook events: %w", err)
	}
	if err := c.checkResponse(resp, "list webhook events"); err != nil {
		return nil, err
	}
	return body.Events, nil
}

// GetWebhookEvent returns one webhook notification by ID.
func (c *Client) GetWebhookEvent(ctx context.Context, eventID string) (*WebhookEvent, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var event WebhookEvent
	resp, err := req.
		SetResult(&event).
		SetPathParam("id", eventID).
		Get("/v1/notifications/webhooks-events/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to get PayPal webhook event '%s': %w", eventID, err)
	}
	if err := c.checkResponse(resp, "get webhook event"); err != nil {
		return nil, err
	}
	return &event, nil
}

// VerifyWebhookSignature asks PayPal to validate a received webhook payload.
func (c *Client) VerifyWebhookSignature(ctx context.Context, verification *WebhookVerification) (bool, error) {
	req, err := c.request(ctx)
	if err != nil {
		return false, err
	}

	var body webhookVerifyResponse
	resp, err := req.
		SetBody(verification).
		SetResult(&body).
		Post("/v1/notifications/verify-webhook-signature")
	if err != nil {
		return false, fmt.Errorf("failed to verify PayPal webhook signature: %w", err)
	}
	if err := c.checkResponse(resp, "verify webhook signature"); err != nil {
		return false, err
	}
	return body.VerificationStatus == "SUCCESS", nil
}
