package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/db"
	"ixiclinic-admin-go/internal/models"
	"ixiclinic-admin-go/internal/plans"
)

// MockAccountRepository is a mock implementation of db.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) (string, error) {
	args := m.Called(ctx, account)
	return args.String(0), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ListByStatus(ctx context.Context, status models.SubscriptionStatus) ([]*models.Account, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateFields(ctx context.Context, accountID string, fields map[string]interface{}) error {
	args := m.Called(ctx, accountID, fields)
	return args.Error(0)
}

// MockPatientRepository is a mock implementation of db.PatientRepository.
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Patient, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Patient), args.Error(1)
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *models.Patient) (string, error) {
	args := m.Called(ctx, patient)
	return args.String(0), args.Error(1)
}

// MockClinicUserRepository is a mock implementation of db.ClinicUserRepository.
type MockClinicUserRepository struct {
	mock.Mock
}

func (m *MockClinicUserRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.ClinicUser, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ClinicUser), args.Error(1)
}

func (m *MockClinicUserRepository) Create(ctx context.Context, user *models.ClinicUser) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

// MockAppointmentRepository is a mock implementation of db.AppointmentRepository.
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Appointment, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Appointment), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of db.InvoiceRepository.
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Invoice, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

// MockPurgeRepository is a mock implementation of db.PurgeRepository.
type MockPurgeRepository struct {
	mock.Mock
}

func (m *MockPurgeRepository) PurgeAccount(ctx context.Context, accountID string) (*db.PurgeResult, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.PurgeResult), args.Error(1)
}

// MockAdminActionRepository is a mock implementation of db.AdminActionRepository.
type MockAdminActionRepository struct {
	mock.Mock
}

func (m *MockAdminActionRepository) Create(ctx context.Context, action *models.AdminAction) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}

func (m *MockAdminActionRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.AdminAction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AdminAction), args.Error(1)
}

// MockIdentityService is a mock implementation of identity.Service.
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) UIDByEmail(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityService) DeleteUser(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockIdentityService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	args := m.Called(ctx, uid)
	return args.Bool(0), args.Error(1)
}

type accountServiceFixture struct {
	accountRepo     *MockAccountRepository
	patientRepo     *MockPatientRepository
	userRepo        *MockClinicUserRepository
	appointmentRepo *MockAppointmentRepository
	invoiceRepo     *MockInvoiceRepository
	purgeRepo       *MockPurgeRepository
	actionRepo      *MockAdminActionRepository
	identity        *MockIdentityService
	service         AccountService
}

func newAccountServiceFixture() *accountServiceFixture {
	f := &accountServiceFixture{
		accountRepo:     new(MockAccountRepository),
		patientRepo:     new(MockPatientRepository),
		userRepo:        new(MockClinicUserRepository),
		appointmentRepo: new(MockAppointmentRepository),
		invoiceRepo:     new(MockInvoiceRepository),
		purgeRepo:       new(MockPurgeRepository),
		actionRepo:      new(MockAdminActionRepository),
		identity:        new(MockIdentityService),
	}
	f.service = NewAccountService(
		f.accountRepo, f.patientRepo, f.userRepo, f.appointmentRepo, f.invoiceRepo,
		f.purgeRepo, f.identity, plans.NewCatalog(), NewAuditService(f.actionRepo), zap.NewNop(),
	)
	return f
}

func testAccount(id string) *models.Account {
	return &models.Account{
		ID:      id,
		Email:   "clinic@example.com",
		Type:    models.AccountTypeClinic,
		OwnerID: "owner-uid",
		BillingInfo: models.BillingInfo{
			PlanName:           "clinic-pro-monthly",
			SubscriptionStatus: models.SubscriptionActive,
		},
		IsActive: true,
	}
}

func TestDeleteAccountCompletely(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()
	account := testAccount("acc-1")

	f.accountRepo.On("GetByID", mock.Anything, "acc-1").Return(account, nil)
	f.purgeRepo.On("PurgeAccount", mock.Anything, "acc-1").
		Return(&db.PurgeResult{Patients: 2, Appointments: 1, Total: 4}, nil)
	f.identity.On("DeleteUser", mock.Anything, "owner-uid").Return(nil)
	f.actionRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.AdminAction) bool {
		return a.Action == "delete_account_complete" && a.AccountID == "acc-1" && a.AdminID == "admin-1"
	})).Return(nil)

	result, err := f.service.DeleteAccountCompletely(ctx, "admin-1", "acc-1", "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Patients)

	f.purgeRepo.AssertExpectations(t)
	f.identity.AssertExpectations(t)
	f.actionRepo.AssertExpectations(t)
}

func TestDeleteAccountCompletelySwallowsIdentityFailure(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()

	f.accountRepo.On("GetByID", mock.Anything, "acc-1").Return(testAccount("acc-1"), nil)
	f.purgeRepo.On("PurgeAccount", mock.Anything, "acc-1").
		Return(&db.PurgeResult{Total: 1}, nil)
	f.identity.On("DeleteUser", mock.Anything, "owner-uid").Return(errors.New("auth backend down"))
	f.actionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.DeleteAccountCompletely(ctx, "admin-1", "acc-1", "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	f.identity.AssertExpectations(t)
}

func TestDeleteAccountCompletelyPurgeFailureAborts(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()

	f.accountRepo.On("GetByID", mock.Anything, "acc-1").Return(testAccount("acc-1"), nil)
	f.purgeRepo.On("PurgeAccount", mock.Anything, "acc-1").
		Return(nil, errors.New("batch commit failed"))

	_, err := f.service.DeleteAccountCompletely(ctx, "admin-1", "acc-1", "acc-1")
	require.Error(t, err)

	// a failed purge must not touch the identity user or the audit trail
	f.identity.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	f.actionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteAccountCompletelyRequiresAcknowledgement(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()

	f.accountRepo.On("GetByID", mock.Anything, "acc-1").Return(testAccount("acc-1"), nil)

	_, err := f.service.DeleteAccountCompletely(ctx, "admin-1", "acc-1", "wrong-id")
	assert.ErrorIs(t, err, ErrDeletionNotAcknowledged)
	f.purgeRepo.AssertNotCalled(t, "PurgeAccount", mock.Anything, mock.Anything)
}

func TestDeleteAccountCompletelyNotFound(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()

	f.accountRepo.On("GetByID", mock.Anything, "missing").Return(nil, db.ErrNotFound)

	_, err := f.service.DeleteAccountCompletely(ctx, "admin-1", "missing", "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGetAccountSummary(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()
	account := testAccount("acc-1")

	now := time.Now().UTC()
	f.accountRepo.On("GetByID", mock.Anything, "acc-1").Return(account, nil)
	f.patientRepo.On("ListByAccount", mock.Anything, "acc-1").
		Return([]*models.Patient{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}, nil)
	f.userRepo.On("ListByAccount", mock.Anything, "acc-1").
		Return([]*models.ClinicUser{{ID: "u1"}}, nil)
	f.appointmentRepo.On("ListByAccount", mock.Anything, "acc-1").
		Return([]*models.Appointment{
			{ID: "a1", Date: now.AddDate(0, 0, -2)},
			{ID: "a2", Date: now.AddDate(0, 0, -60)},
		}, nil)

	summary, err := f.service.GetAccountSummary(ctx, "acc-1")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Stats.TotalPatients)
	assert.Equal(t, 1, summary.Stats.TotalUsers)
	assert.Equal(t, 2, summary.Stats.TotalAppointments)
	assert.Equal(t, 1, summary.Stats.RecentAppointments)
	// clinic-pro limits come from the catalog
	assert.Equal(t, 3, summary.Stats.PatientUsage.Used)
	assert.Equal(t, 2000, summary.Stats.PatientUsage.Limit)
	assert.Equal(t, 10, summary.Stats.UserUsage.Limit)
}

func TestExtendTrialFromFutureDate(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()

	account := testAccount("acc-1")
	future := time.Now().UTC().AddDate(0, 0, 10)
	account.BillingInfo.TrialEndDate = &future

	f.accountRepo.On("GetByID", mock.Anything, "acc-1").Return(account, nil)
	f.accountRepo.On("UpdateFields", mock.Anything, "acc-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		newEnd, ok := fields["billingInfo.trialEndDate"].(time.Time)
		if !ok {
			return false
		}
		// 10 days remaining plus 7 more
		want := future.AddDate(0, 0, 7)
		return newEnd.Equal(want) && fields["billingInfo.subscriptionStatus"] == string(models.SubscriptionTrial)
	})).Return(nil)
	f.actionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.service.ExtendTrial(ctx, "admin-1", "acc-1", models.ExtendRequest{Days: 7, Reason: "goodwill"})
	require.NoError(t, err)
	f.accountRepo.AssertExpectations(t)
}

func TestExtendTrialExpiredRestartsFromNow(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()

	account := testAccount("acc-1")
	past := time.Now().UTC().AddDate(0, 0, -30)
	account.BillingInfo.TrialEndDate = &past

	f.accountRepo.On("GetByID", mock.Anything, "acc-1").Return(account, nil)
	f.accountRepo.On("UpdateFields", mock.Anything, "acc-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		newEnd, ok := fields["billingInfo.trialEndDate"].(time.Time)
		if !ok {
			return false
		}
		// restarted from roughly now, not stacked on the expired date
		return newEnd.After(time.Now().UTC().AddDate(0, 0, 6)) && newEnd.Before(time.Now().UTC().AddDate(0, 0, 8))
	})).Return(nil)
	f.actionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.service.ExtendTrial(ctx, "admin-1", "acc-1", models.ExtendRequest{Days: 7, Reason: "restart"})
	require.NoError(t, err)
}

func TestAssignFreeMembership(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()

	f.accountRepo.On("GetByID", mock.Anything, "acc-1").Return(testAccount("acc-1"), nil)
	f.accountRepo.On("UpdateFields", mock.Anything, "acc-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["billingInfo.planName"] == "personal-pro-annual" &&
			fields["billingInfo.membershipType"] == "free" &&
			fields["billingInfo.subscriptionStatus"] == string(models.SubscriptionActive)
	})).Return(nil)
	f.actionRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.AdminAction) bool {
		return a.Action == "assign_free_membership"
	})).Return(nil)

	err := f.service.AssignFreeMembership(ctx, "admin-1", "acc-1", models.FreeMembershipRequest{
		PlanName: "personal-pro-annual", DurationDays: 90, Reason: "partner",
	})
	require.NoError(t, err)
	f.actionRepo.AssertExpectations(t)
}

func TestAssignFreeMembershipUnknownPlan(t *testing.T) {
	f := newAccountServiceFixture()

	err := f.service.AssignFreeMembership(context.Background(), "admin-1", "acc-1", models.FreeMembershipRequest{
		PlanName: "no-such-plan", DurationDays: 30, Reason: "x",
	})
	assert.ErrorIs(t, err, ErrUnknownPlan)
	f.accountRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePlanUnknown(t *testing.T) {
	f := newAccountServiceFixture()

	err := f.service.ChangePlan(context.Background(), "admin-1", "acc-1", models.ChangePlanRequest{
		PlanName: "no-such-plan", Reason: "x",
	})
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestAssignOwnerResolvesEmail(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()

	f.accountRepo.On("GetByID", mock.Anything, "acc-1").Return(testAccount("acc-1"), nil)
	f.identity.On("UIDByEmail", mock.Anything, "owner@example.com").Return("uid-9", nil)
	f.accountRepo.On("UpdateFields", mock.Anything, "acc-1", map[string]interface{}{
		"ownerId":    "uid-9",
		"ownerEmail": "owner@example.com",
	}).Return(nil)
	f.actionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.service.AssignOwner(ctx, "admin-1", "acc-1", models.AssignOwnerRequest{Email: "owner@example.com"})
	require.NoError(t, err)
	f.accountRepo.AssertExpectations(t)
}

func TestUnassignOwnerWithoutOwner(t *testing.T) {
	f := newAccountServiceFixture()

	account := testAccount("acc-1")
	account.OwnerID = ""
	f.accountRepo.On("GetByID", mock.Anything, "acc-1").Return(account, nil)

	err := f.service.UnassignOwner(context.Background(), "admin-1", "acc-1", models.UnassignOwnerRequest{Reason: "cleanup"})
	assert.ErrorIs(t, err, ErrNoOwnerLinked)
}

func TestCreateAccountStartsOnTrial(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()

	f.accountRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Account) bool {
		return a.BillingInfo.SubscriptionStatus == models.SubscriptionTrial &&
			a.BillingInfo.TrialEndDate != nil && a.IsActive
	})).Return("acc-new", nil)
	f.actionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	account, err := f.service.CreateAccount(ctx, "admin-1", models.CreateAccountRequest{
		Email: "new@example.com", Type: models.AccountTypeClinic, PlanName: "clinic-pro-monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, "acc-new", account.ID)
	f.identity.AssertNotCalled(t, "UIDByEmail", mock.Anything, mock.Anything)
}

func TestCreateAccountSeedsInitialUser(t *testing.T) {
	f := newAccountServiceFixture()
	ctx := context.Background()

	f.accountRepo.On("Create", mock.Anything, mock.Anything).Return("acc-new", nil)
	f.userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.ClinicUser) bool {
		return u.AccountID == "acc-new" && u.Email == "doc@example.com" && u.Role == models.RoleAdmin
	})).Return("user-1", nil)
	f.actionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.CreateAccount(ctx, "admin-1", models.CreateAccountRequest{
		Email: "new@example.com",
		Type:  models.AccountTypeClinic,
		InitialUser: &models.InitialUserSetup{
			Email: "doc@example.com",
		},
	})
	require.NoError(t, err)
	f.userRepo.AssertExpectations(t)
}
