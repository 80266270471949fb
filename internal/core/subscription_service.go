package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/models"
	"ixiclinic-admin-go/internal/paypal"
)

// SubscriptionProvider is the slice of the payment provider API the
// subscription service needs.
type SubscriptionProvider interface {
	ListSubscriptions(ctx context.Context, planIDs []string, status string) ([]paypal.Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*paypal.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID, reason string) error
	SuspendSubscription(ctx context.Context, subscriptionID, reason string) error
	ActivateSubscription(ctx context.Context, subscriptionID, reason string) error
	ReviseSubscription(ctx context.Context, subscriptionID, planID string) error
	ListTransactions(ctx context.Context, subscriptionID string, window paypal.TransactionWindow) ([]paypal.Transaction, error)
	ListWebhookEvents(ctx context.Context, pageSize int) ([]paypal.WebhookEvent, error)
	GetWebhookEvent(ctx context.Context, eventID string) (*paypal.WebhookEvent, error)
}

// LocalSubscriptionStatus maps a provider subscription status onto the local
// billing state stored on accounts.
func LocalSubscriptionStatus(providerStatus string) models.SubscriptionStatus {
	switch providerStatus {
	case "ACTIVE":
		return models.SubscriptionActive
	case "SUSPENDED":
		return models.SubscriptionSuspended
	case "CANCELLED", "EXPIRED":
		return models.SubscriptionCancelled
	case "APPROVAL_PENDING", "APPROVED":
		return models.SubscriptionPending
	default:
		return models.SubscriptionPending
	}
}

// subscriptionService implements SubscriptionService.
type subscriptionService struct {
	provider     SubscriptionProvider
	planIDs      map[string]string
	auditService AuditService
	logger       *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService instance.
func NewSubscriptionService(provider SubscriptionProvider, planIDs map[string]string, as AuditService, logger *zap.Logger) SubscriptionService {
	return &subscriptionService{
		provider:     provider,
		planIDs:      planIDs,
		auditService: as,
		logger:       logger,
	}
}

func (s *subscriptionService) configuredPlanIDs() []string {
	ids := make([]string, 0, len(s.planIDs))
	for _, id := range s.planIDs {
		ids = append(ids, id)
	}
	return ids
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, status string) ([]paypal.Subscription, error) {
	subs, err := s.provider.ListSubscriptions(ctx, s.configuredPlanIDs(), status)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// ProblemSubscriptions returns subscriptions with failed payments or an
// outstanding balance, across every configured plan and status.
func (s *subscriptionService) ProblemSubscriptions(ctx context.Context) ([]paypal.Subscription, error) {
	subs, err := s.ListSubscriptions(ctx, "")
	if err != nil {
		return nil, err
	}
	var problems []paypal.Subscription
	for _, sub := range subs {
		if sub.HasPaymentIssues() {
			problems = append(problems, sub)
		}
	}
	return problems, nil
}

// UsageMetrics aggregates subscription counts and revenue across every
// configured plan. Per-plan counts are keyed by the local plan name when the
// provider plan ID is mapped, otherwise by the raw ID.
func (s *subscriptionService) UsageMetrics(ctx context.Context) (*SubscriptionUsage, error) {
	subs, err := s.ListSubscriptions(ctx, "")
	if err != nil {
		return nil, err
	}

	localNames := make(map[string]string, len(s.planIDs))
	for name, id := range s.planIDs {
		localNames[id] = name
	}

	usage := &SubscriptionUsage{ByPlan: make(map[string]int)}
	for _, sub := range subs {
		usage.Total++
		key := sub.PlanID
		if name, ok := localNames[sub.PlanID]; ok {
			key = name
		}
		usage.ByPlan[key]++
		if sub.HasPaymentIssues() {
			usage.Problems++
		}
		if !sub.IsActive() {
			continue
		}
		usage.Active++
		if sub.BillingInfo != nil && sub.BillingInfo.LastPayment != nil && sub.BillingInfo.LastPayment.Amount != nil {
			amount, err := strconv.ParseFloat(sub.BillingInfo.LastPayment.Amount.Value, 64)
			if err != nil {
				s.logger.Warn("unparseable last payment amount",
					zap.String("subscriptionId", sub.ID),
					zap.String("value", sub.BillingInfo.LastPayment.Amount.Value),
				)
				continue
			}
			usage.MonthlyRevenue += amount
		}
	}
	usage.MonthlyRevenue = round2(usage.MonthlyRevenue)
	return usage, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, subscriptionID string) (*paypal.Subscription, error) {
	return s.provider.GetSubscription(ctx, subscriptionID)
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, adminID, subscriptionID, reason string) error {
	if err := s.provider.CancelSubscription(ctx, subscriptionID, reason); err != nil {
		return err
	}
	s.recordAudit(ctx, adminID, "cancel_subscription", subscriptionID, reason)
	return nil
}

func (s *subscriptionService) SuspendSubscription(ctx context.Context, adminID, subscriptionID, reason string) error {
	if err := s.provider.SuspendSubscription(ctx, subscriptionID, reason); err != nil {
		return err
	}
	s.recordAudit(ctx, adminID, "suspend_subscription", subscriptionID, reason)
	return nil
}

func (s *subscriptionService) ActivateSubscription(ctx context.Context, adminID, subscriptionID, reason string) error {
	if err := s.provider.ActivateSubscription(ctx, subscriptionID, reason); err != nil {
		return err
	}
	s.recordAudit(ctx, adminID, "activate_subscription", subscriptionID, reason)
	return nil
}

func (s *subscriptionService) ReviseSubscription(ctx context.Context, adminID, subscriptionID, planID string) error {
	if err := s.provider.ReviseSubscription(ctx, subscriptionID, planID); err != nil {
		return err
	}
	s.recordAudit(ctx, adminID, "revise_subscription", subscriptionID, "plan "+planID)
	return nil
}

// ListTransactions returns the subscription's transaction history for the
// last N days (defaulting to 90).
func (s *subscriptionService) ListTransactions(ctx context.Context, subscriptionID string, days int) ([]paypal.Transaction, error) {
	if days <= 0 {
		days = 90
	}
	now := time.Now().UTC()
	window := paypal.TransactionWindow{
		Start: now.AddDate(0, 0, -days),
		End:   now,
	}
	return s.provider.ListTransactions(ctx, subscriptionID, window)
}

func (s *subscriptionService) ListWebhookEvents(ctx context.Context, pageSize int) ([]paypal.WebhookEvent, error) {
	return s.provider.ListWebhookEvents(ctx, pageSize)
}

func (s *subscriptionService) GetWebhookEvent(ctx context.Context, eventID string) (*paypal.WebhookEvent, error) {
	return s.provider.GetWebhookEvent(ctx, eventID)
}

func (s *subscriptionService) recordAudit(ctx context.Context, adminID, action, subscriptionID, reason string) {
	entry := &models.AdminAction{
		Action:  action,
		AdminID: adminID,
		Details: map[string]interface{}{
			"subscriptionId": subscriptionID,
			"reason":         reason,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.auditService.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record admin action",
			zap.String("action", action),
			zap.String("subscriptionId", subscriptionID),
			zap.Error(err),
		)
	}
}
