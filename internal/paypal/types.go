package paypal

import "time"

// tokenResponse is the OAuth2 client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Money is PayPal's currency amount representation. Value is a decimal string.
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// FixedPrice wraps the price a billing cycle charges.
type PricingScheme struct {
	FixedPrice *Money `json:"fixed_price,omitempty"`
	Version    int    `json:"version,omitempty"`
}

// Frequency describes how often a billing cycle repeats.
type Frequency struct {
	IntervalUnit  string `json:"interval_unit"`
	IntervalCount int    `json:"interval_count"`
}

// BillingCycle is one phase of a plan's billing schedule. The regular cycle
// carries sequence 1; trial phases come before it.
type BillingCycle struct {
	TenureType    string         `json:"tenure_type"` // REGULAR or TRIAL
	Sequence      int            `json:"sequence"`
	Frequency     *Frequency     `json:"frequency,omitempty"`
	TotalCycles   int            `json:"total_cycles"`
	PricingScheme *PricingScheme `json:"pricing_scheme,omitempty"`
}

// Plan is a PayPal billing plan.
type Plan struct {
	ID            string         `json:"id"`
	ProductID     string         `json:"product_id,omitempty"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Status        string         `json:"status"` // CREATED, ACTIVE, INACTIVE
	BillingCycles []BillingCycle `json:"billing_cycles,omitempty"`
	CreateTime    string         `json:"create_time,omitempty"`
	UpdateTime    string         `json:"update_time,omitempty"`
}

// RegularPrice returns the fixed price of the regular billing cycle, or nil
// when the plan carries none.
func (p *Plan) RegularPrice() *Money {
	for i := range p.BillingCycles {
		c := &p.BillingCycles[i]
		if c.TenureType == "REGULAR" && c.PricingScheme != nil {
			return c.PricingScheme.FixedPrice
		}
	}
	return nil
}

type planListResponse struct {
	Plans      []Plan `json:"plans"`
	TotalItems int    `json:"total_items"`
	TotalPages int    `json:"total_pages"`
}

// Subscriber identifies the paying customer on a subscription.
type Subscriber struct {
	EmailAddress string `json:"email_address,omitempty"`
	PayerID      string `json:"payer_id,omitempty"`
	Name         struct {
		GivenName string `json:"given_name,omitempty"`
		Surname   string `json:"surname,omitempty"`
	} `json:"name,omitempty"`
}

// BillingInfo is the billing state PayPal tracks per subscription.
type BillingInfo struct {
	OutstandingBalance  *Money `json:"outstanding_balance,omitempty"`
	FailedPaymentsCount int    `json:"failed_payments_count"`
	NextBillingTime     string `json:"next_billing_time,omitempty"`
	LastPayment         *struct {
		Amount *Money `json:"amount,omitempty"`
		Time   string `json:"time,omitempty"`
	} `json:"last_payment,omitempty"`
}

// Subscription is a PayPal billing subscription.
type Subscription struct {
	ID          string       `json:"id"`
	PlanID      string       `json:"plan_id"`
	Status      string       `json:"status"` // APPROVAL_PENDING, APPROVED, ACTIVE, SUSPENDED, CANCELLED, EXPIRED
	Subscriber  *Subscriber  `json:"subscriber,omitempty"`
	BillingInfo *BillingInfo `json:"billing_info,omitempty"`
	StartTime   string       `json:"start_time,omitempty"`
	CreateTime  string       `json:"create_time,omitempty"`
	UpdateTime  string       `json:"update_time,omitempty"`
}

// IsActive reports whether the subscription is currently billing.
func (s *Subscription) IsActive() bool {
	return s.Status == "ACTIVE"
}

// HasPaymentIssues reports whether the subscription has failed payments or an
// outstanding balance.
func (s *Subscription) HasPaymentIssues() bool {
	if s.BillingInfo == nil {
		return false
	}
	if s.BillingInfo.FailedPaymentsCount > 0 {
		return true
	}
	ob := s.BillingInfo.OutstandingBalance
	return ob != nil && ob.Value != "" && ob.Value != "0" && ob.Value != "0.0" && ob.Value != "0.00"
}

type subscriptionListResponse struct {
	Subscriptions []Subscription `json:"subscriptions"`
	TotalItems    int            `json:"total_items"`
	TotalPages    int            `json:"total_pages"`
}

// Transaction is one entry of a subscription's transaction history.
type Transaction struct {
	ID                  string `json:"id"`
	Status              string `json:"status"`
	PayerEmail          string `json:"payer_email,omitempty"`
	AmountWithBreakdown struct {
		GrossAmount *Money `json:"gross_amount,omitempty"`
		FeeAmount   *Money `json:"fee_amount,omitempty"`
		NetAmount   *Money `json:"net_amount,omitempty"`
	} `json:"amount_with_breakdown"`
	Time string `json:"time,omitempty"`
}

type transactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
	TotalItems   int           `json:"total_items"`
	TotalPages   int           `json:"total_pages"`
}

// WebhookEvent is a notification PayPal recorded for the configured webhook.
type WebhookEvent struct {
	ID           string      `json:"id"`
	EventType    string      `json:"event_type"`
	ResourceType string      `json:"resource_type,omitempty"`
	Summary      string      `json:"summary,omitempty"`
	Resource     interface{} `json:"resource,omitempty"`
	CreateTime   string      `json:"create_time,omitempty"`
}

type webhookEventListResponse struct {
	Events []WebhookEvent `json:"events"`
	Count  int            `json:"count"`
}

// WebhookVerification is the request body for webhook signature verification.
type WebhookVerification struct {
	AuthAlgo         string      `json:"auth_algo"`
	CertURL          string      `json:"cert_url"`
	TransmissionID   string      `json:"transmission_id"`
	TransmissionSig  string      `json:"transmission_sig"`
	TransmissionTime string      `json:"transmission_time"`
	WebhookID        string      `json:"webhook_id"`
	WebhookEvent     interface{} `json:"webhook_event"`
}

type webhookVerifyResponse struct {
	VerificationStatus string `json:"verification_status"` // SUCCESS or FAILURE
}

// patchOp is a JSON Patch operation as PayPal's plan update endpoint expects.
type patchOp struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// errorResponse is PayPal's standard error body.
type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details []struct {
		Field       string `json:"field,omitempty"`
		Issue       string `json:"issue"`
		Description string `json:"description,omitempty"`
	} `json:"details,omitempty"`
	DebugID string `json:"debug_id,omitempty"`
}

// TransactionWindow bounds a transaction history query.
type TransactionWindow struct {
	Start time.Time
	End   time.Time
}
