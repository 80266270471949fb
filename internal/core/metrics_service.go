package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ixiclinic-admin-go/internal/db"
	"ixiclinic-admin-go/internal/models"
	"ixiclinic-admin-go/internal/plans"
)

// tenantFetchConcurrency caps parallel per-tenant reads while aggregating
// dashboard numbers.
const tenantFetchConcurrency = 8

// metricsService implements MetricsService by aggregating over all tenants.
type metricsService struct {
	accountRepo     db.AccountRepository
	patientRepo     db.PatientRepository
	userRepo        db.ClinicUserRepository
	appointmentRepo db.AppointmentRepository
	alertRepo       db.AlertRepository
	catalog         *plans.Catalog
	logger          *zap.Logger
}

// NewMetricsService creates a new MetricsService instance.
func NewMetricsService(
	ar db.AccountRepository,
	pr db.PatientRepository,
	ur db.ClinicUserRepository,
	apr db.AppointmentRepository,
	alr db.AlertRepository,
	catalog *plans.Catalog,
	logger *zap.Logger,
) MetricsService {
	return &metricsService{
		accountRepo:     ar,
		patientRepo:     pr,
		userRepo:        ur,
		appointmentRepo: apr,
		alertRepo:       alr,
		catalog:         catalog,
		logger:          logger,
	}
}

// DashboardMetrics builds the headline numbers: account counts by status,
// total patients across tenants and the monthly-equivalent revenue of active
// subscriptions.
func (s *metricsService) DashboardMetrics(ctx context.Context) (*models.AdminMetrics, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for metrics: %w", err)
	}

	metrics := &models.AdminMetrics{TotalAccounts: len(accounts)}
	for _, acc := range accounts {
		switch acc.BillingInfo.SubscriptionStatus {
		case models.SubscriptionActive:
			metrics.ActiveSubscriptions++
			metrics.MonthlyRevenue += s.monthlyRevenueOf(acc)
		case models.SubscriptionTrial:
			metrics.TrialAccounts++
		}
	}
	metrics.MonthlyRevenue = round2(metrics.MonthlyRevenue)

	totalPatients, err := s.countPatients(ctx, accounts)
	if err != nil {
		return nil, err
	}
	metrics.TotalPatients = totalPatients

	metrics.SystemHealth = "ok"
	alerts, err := s.alertRepo.ListUnresolved(ctx)
	if err != nil {
		s.logger.Warn("failed to list alerts for system health", zap.Error(err))
		metrics.SystemHealth = "unknown"
	} else {
		for _, alert := range alerts {
			if alert.Severity == "critical" {
				metrics.SystemHealth = "degraded"
				break
			}
		}
	}

	return metrics, nil
}

// monthlyRevenueOf normalizes a plan price to its per-month equivalent. Free
// memberships contribute nothing.
func (s *metricsService) monthlyRevenueOf(acc *models.Account) float64 {
	if acc.BillingInfo.MembershipType == "free" || acc.BillingInfo.PlanName == "" {
		return 0
	}
	plan, err := s.catalog.ByName(acc.BillingInfo.PlanName)
	if err != nil {
		return 0
	}
	switch plan.Billing {
	case plans.Quarterly:
		return plan.Price / 3
	case plans.Annual:
		return plan.Price / 12
	default:
		return plan.Price
	}
}

func (s *metricsService) countPatients(ctx context.Context, accounts []*models.Account) (int, error) {
	var (
		mu    sync.Mutex
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tenantFetchConcurrency)
	for _, acc := range accounts {
		g.Go(func() error {
			patients, err := s.patientRepo.ListByAccount(gctx, acc.ID)
			if err != nil {
				return fmt.Errorf("failed to count patients of account '%s': %w", acc.ID, err)
			}
			mu.Lock()
			total += len(patients)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total, nil
}

// QuickStats builds the landing-page counter block by walking every tenant's
// child records in parallel.
func (s *metricsService) QuickStats(ctx context.Context) (*models.QuickStats, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for quick stats: %w", err)
	}

	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfWeek := startOfDay.AddDate(0, 0, -int(startOfDay.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &models.QuickStats{GeneratedAt: now}
	stats.Accounts.Total = len(accounts)
	for _, acc := range accounts {
		if acc.IsActive {
			stats.Accounts.Active++
		} else {
			stats.Accounts.Inactive++
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tenantFetchConcurrency)
	for _, acc := range accounts {
		g.Go(func() error {
			patients, err := s.patientRepo.ListByAccount(gctx, acc.ID)
			if err != nil {
				return fmt.Errorf("failed to list patients of account '%s': %w", acc.ID, err)
			}
			users, err := s.userRepo.ListByAccount(gctx, acc.ID)
			if err != nil {
				return fmt.Errorf("failed to list users of account '%s': %w", acc.ID, err)
			}
			appointments, err := s.appointmentRepo.ListByAccount(gctx, acc.ID)
			if err != nil {
				return fmt.Errorf("failed to list appointments of account '%s': %w", acc.ID, err)
			}

			mu.Lock()
			defer mu.Unlock()
			stats.Patients.Total += len(patients)
			for _, p := range patients {
				if !p.CreatedAt.Before(startOfMonth) {
					stats.Patients.ThisMonth++
				}
			}
			stats.Users.Total += len(users)
			for _, u := range users {
				switch u.Role {
				case models.RoleDoctor:
					stats.Users.Doctors++
				case models.RoleStaff:
					stats.Users.Staff++
				}
			}
			stats.Appointments.Total += len(appointments)
			for _, a := range appointments {
				if !a.Date.Before(startOfDay) && a.Date.Before(startOfDay.AddDate(0, 0, 1)) {
					stats.Appointments.Today++
				}
				if !a.Date.Before(startOfWeek) {
					stats.Appointments.ThisWeek++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *metricsService) ListAlerts(ctx context.Context) ([]*models.SystemAlert, error) {
	return s.alertRepo.ListUnresolved(ctx)
}

func (s *metricsService) ResolveAlert(ctx context.Context, alertID string) error {
	return s.alertRepo.Resolve(ctx, alertID)
}
