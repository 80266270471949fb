package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ixiclinic-admin-go/internal/db"
	"ixiclinic-admin-go/internal/identity"
	"ixiclinic-admin-go/internal/models"
	"ixiclinic-admin-go/internal/plans"
)

// Custom errors for the AccountService
var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrAccountAlreadyExists    = errors.New("an account with this email already exists")
	ErrDeletionNotAcknowledged = errors.New("deletion not acknowledged: request must echo the account ID")
	ErrNoOwnerLinked           = errors.New("account has no linked owner")
	ErrOwnerUserNotFound       = errors.New("no identity user matches the given email")
	ErrUnknownPlan             = errors.New("unknown plan name")
)

const defaultTrialDays = 14

// recentAppointmentWindow bounds the "recent activity" stat on the account
// details screen.
const recentAppointmentWindow = 30 * 24 * time.Hour

// accountService implements the AccountService interface.
type accountService struct {
	accountRepo     db.AccountRepository
	patientRepo     db.PatientRepository
	userRepo        db.ClinicUserRepository
	appointmentRepo db.AppointmentRepository
	invoiceRepo     db.InvoiceRepository
	purgeRepo       db.PurgeRepository
	identity        identity.Service
	catalog         *plans.Catalog
	auditService    AuditService
	logger          *zap.Logger
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(
	ar db.AccountRepository,
	pr db.PatientRepository,
	ur db.ClinicUserRepository,
	apr db.AppointmentRepository,
	ir db.InvoiceRepository,
	purge db.PurgeRepository,
	ids identity.Service,
	catalog *plans.Catalog,
	as AuditService,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		accountRepo:     ar,
		patientRepo:     pr,
		userRepo:        ur,
		appointmentRepo: apr,
		invoiceRepo:     ir,
		purgeRepo:       purge,
		identity:        ids,
		catalog:         catalog,
		auditService:    as,
		logger:          logger,
	}
}

// audit appends an admin action, logging and swallowing failures so the main
// operation never fails because the trail could not be written.
func (s *accountService) audit(ctx context.Context, action, accountID, adminID string, details map[string]interface{}) {
	entry := &models.AdminAction{
		Action:    action,
		AccountID: accountID,
		AdminID:   adminID,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.auditService.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record admin action",
			zap.String("action", action),
			zap.String("accountId", accountID),
			zap.Error(err),
		)
	}
}

// CreateAccount creates a new tenant, optionally linking an identity-provider
// owner and seeding the first clinic user. New accounts start on trial.
func (s *accountService) CreateAccount(ctx context.Context, adminID string, req models.CreateAccountRequest) (*models.Account, error) {
	planName := req.PlanName
	if planName != "" {
		if _, err := s.catalog.ByName(planName); err != nil {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownPlan, planName)
		}
	}

	var ownerUID string
	if req.OwnerEmail != "" {
		uid, err := s.identity.UIDByEmail(ctx, req.OwnerEmail)
		if err != nil {
			if errors.Is(err, identity.ErrUserNotFound) {
				return nil, fmt.Errorf("%w: '%s'", ErrOwnerUserNotFound, req.OwnerEmail)
			}
			return nil, fmt.Errorf("failed to resolve owner '%s': %w", req.OwnerEmail, err)
		}
		ownerUID = uid
	}

	trialEnd := time.Now().UTC().AddDate(0, 0, defaultTrialDays)
	account := &models.Account{
		Email:    req.Email,
		Name:     req.Name,
		Type:     req.Type,
		Settings: req.Settings,
		BillingInfo: models.BillingInfo{
			PlanName:           planName,
			SubscriptionStatus: models.SubscriptionTrial,
			MembershipType:     "trial",
			TrialEndDate:       &trialEnd,
		},
		OwnerID:    ownerUID,
		OwnerEmail: req.OwnerEmail,
		IsActive:   true,
	}

	accountID, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	account.ID = accountID

	if req.InitialUser != nil {
		role := req.InitialUser.Role
		if role == "" {
			role = models.RoleAdmin
		}
		firstUser := &models.ClinicUser{
			AccountID: accountID,
			Email:     req.InitialUser.Email,
			Name:      req.InitialUser.Name,
			Role:      role,
			IsActive:  true,
		}
		if _, err := s.userRepo.Create(ctx, firstUser); err != nil {
			s.logger.Warn("failed to seed initial clinic user",
				zap.String("accountId", accountID),
				zap.String("email", req.InitialUser.Email),
				zap.Error(err),
			)
		}
	}

	s.audit(ctx, "create_account", accountID, adminID, map[string]interface{}{
		"email": account.Email,
		"type":  string(account.Type),
		"plan":  planName,
	})
	return account, nil
}

// GetAccount retrieves one account by ID.
func (s *accountService) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to get account '%s': %w", accountID, err)
	}
	return account, nil
}

// ListAccounts returns all accounts, newest first.
func (s *accountService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.accountRepo.List(ctx)
}

// ListAccountsByStatus returns all accounts in the given billing state.
func (s *accountService) ListAccountsByStatus(ctx context.Context, status models.SubscriptionStatus) ([]*models.Account, error) {
	return s.accountRepo.ListByStatus(ctx, status)
}

// UpdateAccount applies a partial update to an account's profile fields.
func (s *accountService) UpdateAccount(ctx context.Context, adminID, accountID string, req models.UpdateAccountRequest) (*models.Account, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	changed := map[string]interface{}{}
	if req.Email != nil {
		account.Email = *req.Email
		changed["email"] = *req.Email
	}
	if req.Name != nil {
		account.Name = *req.Name
		changed["name"] = *req.Name
	}
	if req.Type != nil {
		account.Type = *req.Type
		changed["type"] = string(*req.Type)
	}
	if req.Settings != nil {
		account.Settings = *req.Settings
		changed["settings"] = true
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
		changed["isActive"] = *req.IsActive
	}
	if len(changed) == 0 {
		return account, nil
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account '%s': %w", accountID, err)
	}

	s.audit(ctx, "update_account", accountID, adminID, changed)
	return account, nil
}

// DeleteAccountCompletely removes the account document and every dependent
// record in one atomic batch, then makes a best-effort attempt to delete the
// linked identity user. The identity deletion is outside the batch: a failure
// there leaves an orphaned login but never a half-deleted tenant.
func (s *accountService) DeleteAccountCompletely(ctx context.Context, adminID, accountID, acknowledge string) (*db.PurgeResult, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acknowledge != accountID {
		return nil, ErrDeletionNotAcknowledged
	}

	result, err := s.purgeRepo.PurgeAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to purge account '%s': %w", accountID, err)
	}

	if account.OwnerID != "" {
		if err := s.identity.DeleteUser(ctx, account.OwnerID); err != nil {
			s.logger.Warn("failed to delete identity user after account purge",
				zap.String("accountId", accountID),
				zap.String("ownerId", account.OwnerID),
				zap.Error(err),
			)
		}
	}

	s.audit(ctx, "delete_account_complete", accountID, adminID, map[string]interface{}{
		"email":        account.Email,
		"patients":     result.Patients,
		"appointments": result.Appointments,
		"users":        result.Users,
		"invoices":     result.Invoices,
		"files":        result.Files,
		"total":        result.Total,
	})
	return result, nil
}

// GetAccountSummary assembles the account-details view: the account, its
// child records and derived stats, fetched in parallel.
func (s *accountService) GetAccountSummary(ctx context.Context, accountID string) (*models.AccountSummary, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var (
		patients     []*models.Patient
		users        []*models.ClinicUser
		appointments []*models.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		patients, err = s.patientRepo.ListByAccount(gctx, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.userRepo.ListByAccount(gctx, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		appointments, err = s.appointmentRepo.ListByAccount(gctx, accountID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to assemble summary for account '%s': %w", accountID, err)
	}

	return &models.AccountSummary{
		Account:      account,
		Patients:     patients,
		Users:        users,
		Appointments: appointments,
		Stats:        s.buildStats(account, patients, users, appointments),
	}, nil
}

func (s *accountService) buildStats(account *models.Account, patients []*models.Patient, users []*models.ClinicUser, appointments []*models.Appointment) models.AccountStats {
	stats := models.AccountStats{
		TotalPatients:     len(patients),
		TotalUsers:        len(users),
		TotalAppointments: len(appointments),
	}

	cutoff := time.Now().UTC().Add(-recentAppointmentWindow)
	for _, a := range appointments {
		if a.Date.After(cutoff) {
			stats.RecentAppointments++
		}
	}

	stats.PatientUsage = models.UsageCounter{Used: len(patients)}
	stats.UserUsage = models.UsageCounter{Used: len(users)}
	if account.BillingInfo.PlanName != "" {
		if plan, err := s.catalog.ByName(account.BillingInfo.PlanName); err == nil {
			stats.PatientUsage.Limit = plan.Limits.Patients
			stats.UserUsage.Limit = plan.Limits.Users
		}
	}
	return stats
}

func (s *accountService) ListPatients(ctx context.Context, accountID string) ([]*models.Patient, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.patientRepo.ListByAccount(ctx, accountID)
}

func (s *accountService) ListUsers(ctx context.Context, accountID string) ([]*models.ClinicUser, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.userRepo.ListByAccount(ctx, accountID)
}

func (s *accountService) ListAppointments(ctx context.Context, accountID string) ([]*models.Appointment, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.appointmentRepo.ListByAccount(ctx, accountID)
}

func (s *accountService) ListInvoices(ctx context.Context, accountID string) ([]*models.Invoice, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListByAccount(ctx, accountID)
}

// AssignFreeMembership grants a complimentary membership on the given plan
// for a fixed number of days.
func (s *accountService) AssignFreeMembership(ctx context.Context, adminID, accountID string, req models.FreeMembershipRequest) error {
	if _, err := s.catalog.ByName(req.PlanName); err != nil {
		return fmt.Errorf("%w: '%s'", ErrUnknownPlan, req.PlanName)
	}
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return err
	}

	until := time.Now().UTC().AddDate(0, 0, req.DurationDays)
	fields := map[string]interface{}{
		"billingInfo.planName":           req.PlanName,
		"billingInfo.membershipType":     "free",
		"billingInfo.subscriptionStatus": string(models.SubscriptionActive),
		"billingInfo.nextPaymentDate":    until,
		"billingInfo.adminNotes":         req.Reason,
	}
	if err := s.accountRepo.UpdateFields(ctx, accountID, fields); err != nil {
		return fmt.Errorf("failed to assign free membership on account '%s': %w", accountID, err)
	}

	s.audit(ctx, "assign_free_membership", accountID, adminID, map[string]interface{}{
		"plan":         req.PlanName,
		"durationDays": req.DurationDays,
		"until":        until,
		"reason":       req.Reason,
	})
	return nil
}

// ExtendTrial pushes the trial end date forward. An expired or missing trial
// restarts from now.
func (s *accountService) ExtendTrial(ctx context.Context, adminID, accountID string, req models.ExtendRequest) error {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}

	base := time.Now().UTC()
	if t := account.BillingInfo.TrialEndDate; t != nil && t.After(base) {
		base = t.UTC()
	}
	newEnd := base.AddDate(0, 0, req.Days)

	fields := map[string]interface{}{
		"billingInfo.trialEndDate":       newEnd,
		"billingInfo.subscriptionStatus": string(models.SubscriptionTrial),
	}
	if err := s.accountRepo.UpdateFields(ctx, accountID, fields); err != nil {
		return fmt.Errorf("failed to extend trial on account '%s': %w", accountID, err)
	}

	s.audit(ctx, "extend_trial", accountID, adminID, map[string]interface{}{
		"days":   req.Days,
		"newEnd": newEnd,
		"reason": req.Reason,
	})
	return nil
}

// ExtendMembership pushes the next payment date forward. An expired or
// missing date restarts from now.
func (s *accountService) ExtendMembership(ctx context.Context, adminID, accountID string, req models.ExtendRequest) error {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}

	base := time.Now().UTC()
	if t := account.BillingInfo.NextPaymentDate; t != nil && t.After(base) {
		base = t.UTC()
	}
	newDate := base.AddDate(0, 0, req.Days)

	if err := s.accountRepo.UpdateFields(ctx, accountID, map[string]interface{}{
		"billingInfo.nextPaymentDate": newDate,
	}); err != nil {
		return fmt.Errorf("failed to extend membership on account '%s': %w", accountID, err)
	}

	s.audit(ctx, "extend_membership", accountID, adminID, map[string]interface{}{
		"days":    req.Days,
		"newDate": newDate,
		"reason":  req.Reason,
	})
	return nil
}

// ChangePlan switches the account to a different catalog plan.
func (s *accountService) ChangePlan(ctx context.Context, adminID, accountID string, req models.ChangePlanRequest) error {
	if _, err := s.catalog.ByName(req.PlanName); err != nil {
		return fmt.Errorf("%w: '%s'", ErrUnknownPlan, req.PlanName)
	}
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}

	previous := account.BillingInfo.PlanName
	if err := s.accountRepo.UpdateFields(ctx, accountID, map[string]interface{}{
		"billingInfo.planName": req.PlanName,
	}); err != nil {
		return fmt.Errorf("failed to change plan on account '%s': %w", accountID, err)
	}

	s.audit(ctx, "change_plan", accountID, adminID, map[string]interface{}{
		"from":   previous,
		"to":     req.PlanName,
		"reason": req.Reason,
	})
	return nil
}

// AssignOwner links an identity-provider user to the account by email.
func (s *accountService) AssignOwner(ctx context.Context, adminID, accountID string, req models.AssignOwnerRequest) error {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return err
	}

	uid, err := s.identity.UIDByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return fmt.Errorf("%w: '%s'", ErrOwnerUserNotFound, req.Email)
		}
		return fmt.Errorf("failed to resolve owner '%s': %w", req.Email, err)
	}

	if err := s.accountRepo.UpdateFields(ctx, accountID, map[string]interface{}{
		"ownerId":    uid,
		"ownerEmail": req.Email,
	}); err != nil {
		return fmt.Errorf("failed to assign owner on account '%s': %w", accountID, err)
	}

	s.audit(ctx, "assign_owner", accountID, adminID, map[string]interface{}{
		"ownerEmail": req.Email,
		"ownerId":    uid,
	})
	return nil
}

// UnassignOwner detaches the identity-provider user from the account. The
// identity user itself is left alone.
func (s *accountService) UnassignOwner(ctx context.Context, adminID, accountID string, req models.UnassignOwnerRequest) error {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.OwnerID == "" {
		return fmt.Errorf("%w: '%s'", ErrNoOwnerLinked, accountID)
	}

	if err := s.accountRepo.UpdateFields(ctx, accountID, map[string]interface{}{
		"ownerId":    "",
		"ownerEmail": "",
	}); err != nil {
		return fmt.Errorf("failed to unassign owner on account '%s': %w", accountID, err)
	}

	s.audit(ctx, "unassign_owner", accountID, adminID, map[string]interface{}{
		"previousOwnerId":    account.OwnerID,
		"previousOwnerEmail": account.OwnerEmail,
		"reason":             req.Reason,
	})
	return nil
}
