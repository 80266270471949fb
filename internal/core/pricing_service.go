package core

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/models"
	"ixiclinic-admin-go/internal/paypal"
	"ixiclinic-admin-go/internal/plans"
)

// priceTolerance is the largest local/remote difference still considered in
// sync, absorbing decimal-string rounding on the provider side.
const priceTolerance = 0.01

// PlanProvider is the slice of the payment provider API the pricing service
// needs.
type PlanProvider interface {
	ListPlans(ctx context.Context) ([]paypal.Plan, error)
	GetPlan(ctx context.Context, planID string) (*paypal.Plan, error)
	UpdatePlanPricing(ctx context.Context, planID string, price float64, currency string) error
}

// pricingService implements PricingService over the in-process catalog and
// the payment provider.
type pricingService struct {
	catalog      *plans.Catalog
	provider     PlanProvider
	planIDs      map[string]string // local plan name -> provider plan ID
	auditService AuditService
	logger       *zap.Logger
}

// NewPricingService creates a new PricingService instance.
func NewPricingService(catalog *plans.Catalog, provider PlanProvider, planIDs map[string]string, as AuditService, logger *zap.Logger) PricingService {
	return &pricingService{
		catalog:      catalog,
		provider:     provider,
		planIDs:      planIDs,
		auditService: as,
		logger:       logger,
	}
}

func (s *pricingService) ListPlans(_ context.Context, planType, tier string) []plans.Plan {
	switch {
	case planType != "":
		return s.catalog.ByType(planType)
	case tier != "":
		return s.catalog.ByTier(tier)
	default:
		return s.catalog.All()
	}
}

func (s *pricingService) GetPlan(_ context.Context, name string) (plans.Plan, error) {
	return s.catalog.ByName(name)
}

func (s *pricingService) EffectivePrice(_ context.Context, name string, userCount int) (float64, error) {
	return s.catalog.EffectivePrice(name, userCount)
}

// UpdatePlanPrice changes a local plan price and optionally pushes the new
// price to the provider plan mapped to it.
func (s *pricingService) UpdatePlanPrice(ctx context.Context, adminID, name string, req models.UpdatePlanPriceRequest) (plans.Plan, error) {
	if err := s.catalog.SetPrice(name, req.Price); err != nil {
		return plans.Plan{}, err
	}
	plan, err := s.catalog.ByName(name)
	if err != nil {
		return plans.Plan{}, err
	}

	if req.PushRemote {
		remoteID, ok := s.planIDs[name]
		if !ok {
			return plan, fmt.Errorf("plan '%s' has no provider mapping, price updated locally only", name)
		}
		currency := req.Currency
		if currency == "" {
			currency = s.catalog.Pricing().Currency
		}
		if err := s.provider.UpdatePlanPricing(ctx, remoteID, req.Price, currency); err != nil {
			return plan, fmt.Errorf("local price updated but provider push failed: %w", err)
		}
	}

	s.recordAudit(ctx, adminID, "update_plan_price", map[string]interface{}{
		"plan":       name,
		"price":      req.Price,
		"pushRemote": req.PushRemote,
	})
	return plan, nil
}

// Reconcile compares every mapped local plan against its provider plan and
// reports price mismatches. Nothing is corrected; the report is advisory.
// Provider plans that no mapping covers are matched by normalized name as a
// fallback and surfaced as warnings when they still differ.
func (s *pricingService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	remotePlans, err := s.provider.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider plans for reconciliation: %w", err)
	}

	remoteByID := make(map[string]*paypal.Plan, len(remotePlans))
	remoteByName := make(map[string]*paypal.Plan, len(remotePlans))
	for i := range remotePlans {
		p := &remotePlans[i]
		remoteByID[p.ID] = p
		remoteByName[normalizePlanName(p.Name)] = p
	}

	report := &ReconcileReport{}
	for _, local := range s.catalog.All() {
		remote := s.matchRemote(local.Name, remoteByID, remoteByName, report)
		if remote == nil {
			continue
		}

		report.Compared++
		remotePrice, ok := regularPriceOf(remote)
		if !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("provider plan '%s' (%s) has no parseable regular price", remote.Name, remote.ID))
			continue
		}

		if math.Abs(local.Price-remotePrice) <= priceTolerance {
			report.InSync++
			continue
		}
		report.Differences = append(report.Differences, PriceDifference{
			LocalPlan:    local.Name,
			RemotePlanID: remote.ID,
			RemoteName:   remote.Name,
			LocalPrice:   local.Price,
			RemotePrice:  remotePrice,
			Delta:        round2(local.Price - remotePrice),
		})
	}

	if report.Compared > 0 {
		report.SyncScore = round2(float64(report.InSync) / float64(report.Compared) * 100)
	}

	s.logger.Info("pricing reconciliation finished",
		zap.Int("compared", report.Compared),
		zap.Int("inSync", report.InSync),
		zap.Int("differences", len(report.Differences)),
		zap.Float64("syncScore", report.SyncScore),
	)
	return report, nil
}

// ApplyDifferences pushes the local price to the provider for every mismatch
// the reconciliation found.
func (s *pricingService) ApplyDifferences(ctx context.Context, adminID string) (*ReconcileReport, error) {
	report, err := s.Reconcile(ctx)
	if err != nil {
		return nil, err
	}

	currency := s.catalog.Pricing().Currency
	for _, diff := range report.Differences {
		if err := s.provider.UpdatePlanPricing(ctx, diff.RemotePlanID, diff.LocalPrice, currency); err != nil {
			return report, fmt.Errorf("failed to push price of '%s' to provider plan '%s': %w",
				diff.LocalPlan, diff.RemotePlanID, err)
		}
		s.logger.Info("pushed local price to provider",
			zap.String("plan", diff.LocalPlan),
			zap.String("remotePlanId", diff.RemotePlanID),
			zap.Float64("price", diff.LocalPrice),
		)
	}

	s.recordAudit(ctx, adminID, "apply_price_differences", map[string]interface{}{
		"pushed": len(report.Differences),
	})
	return report, nil
}

// matchRemote resolves the provider plan for a local name: the configured
// mapping first, normalized-name matching as a fallback.
func (s *pricingService) matchRemote(localName string, byID, byName map[string]*paypal.Plan, report *ReconcileReport) *paypal.Plan {
	if remoteID, ok := s.planIDs[localName]; ok {
		if remote, found := byID[remoteID]; found {
			return remote
		}
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("mapped provider plan '%s' for '%s' not found on provider", s.planIDs[localName], localName))
		return nil
	}
	if remote, found := byName[normalizePlanName(localName)]; found {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("plan '%s' matched provider plan '%s' by name only, consider configuring a mapping", localName, remote.ID))
		return remote
	}
	return nil
}

func (s *pricingService) recordAudit(ctx context.Context, adminID, action string, details map[string]interface{}) {
	entry := &models.AdminAction{
		Action:    action,
		AdminID:   adminID,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.auditService.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record admin action",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// normalizePlanName lowercases and strips everything but letters and digits,
// so "Clinic Pro (Annual)" and "clinic-pro-annual" compare equal.
func normalizePlanName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func regularPriceOf(plan *paypal.Plan) (float64, bool) {
	money := plan.RegularPrice()
	if money == nil {
		return 0, false
	}
	price, err := strconv.ParseFloat(money.Value, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
