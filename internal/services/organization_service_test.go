package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"orgmanager/internal/domain"
	"orgmanager/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Save(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) List(ctx context.Context, limit, offset int) ([]repositories.OrganizationSummary, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]repositories.OrganizationSummary), args.Error(1)
}

func (m *MockOrganizationRepository) ListLapsedSubscriptions(ctx context.Context, now time.Time, limit int) ([]domain.OrganizationID, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrganizationID), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetOrganization(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrganizationState), args.Error(1)
}

func (m *MockCacheService) SetOrganization(ctx context.Context, state domain.OrganizationState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockCacheService) DeleteOrganization(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockArchiveExporter struct {
	mock.Mock
}

func (m *MockArchiveExporter) Export(ctx context.Context, state domain.OrganizationState) (string, error) {
	args := m.Called(ctx, state)
	return args.String(0), args.Error(1)
}

func (m *MockArchiveExporter) Exported(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockArchiveExporter) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type OrganizationServiceTestSuite struct {
	suite.Suite
	repo     *MockOrganizationRepository
	cache    *MockCacheService
	exporter *MockArchiveExporter
	clock    *clockwork.FakeClock
	service  OrganizationService
	ctx      context.Context
}

func (suite *OrganizationServiceTestSuite) SetupTest() {
	suite.repo = &MockOrganizationRepository{}
	suite.cache = &MockCacheService{}
	suite.exporter = &MockArchiveExporter{}
	suite.repo.Test(suite.T())
	suite.cache.Test(suite.T())
	suite.exporter.Test(suite.T())

	suite.clock = clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	suite.service = NewOrganizationService(suite.repo, suite.cache, suite.exporter, suite.clock, zerolog.Nop())
	suite.ctx = context.Background()
}

func (suite *OrganizationServiceTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
	suite.exporter.AssertExpectations(suite.T())
}

func TestOrganizationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrganizationServiceTestSuite))
}

func (suite *OrganizationServiceTestSuite) newOrganization(admins int) *domain.Organization {
	data := make([]domain.EmployeeData, admins)
	for i := range data {
		data[i] = domain.EmployeeData{FirstName: "Grace", LastName: "Hopper", Email: "grace@acme.test"}
	}
	org, err := domain.CreateFromAdmins("Acme", data, domain.WithClock(suite.clock))
	require.NoError(suite.T(), err)
	org.SetVersion(1)
	return org
}

func (suite *OrganizationServiceTestSuite) expectLoad(org *domain.Organization) {
	suite.repo.On("GetByID", suite.ctx, org.ID()).Return(org, nil).Once()
}

func (suite *OrganizationServiceTestSuite) expectSaved(org *domain.Organization) {
	suite.repo.On("Save", suite.ctx, org).Return(nil).Once()
	suite.cache.On("SetOrganization", suite.ctx, mock.MatchedBy(func(s domain.OrganizationState) bool {
		return s.ID == org.ID().UUID()
	})).Return(nil).Once()
}

func (suite *OrganizationServiceTestSuite) archivedOrganization() *domain.Organization {
	org := suite.newOrganization(1)
	require.NoError(suite.T(), org.OnSubscriptionExpired())
	require.NoError(suite.T(), org.Archive())
	return org
}

func (suite *OrganizationServiceTestSuite) TestCreate_Success() {
	suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*domain.Organization")).Return(nil).Once()

	state, err := suite.service.Create(suite.ctx, &CreateOrganizationRequest{
		Name: "Acme",
		Admins: []EmployeeRequest{
			{FirstName: "Ada", LastName: "Lovelace", Email: "ada@acme.test"},
			{FirstName: "Alan", LastName: "Turing", Email: "alan@acme.test"},
		},
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme", state.Name)
	assert.Equal(suite.T(), domain.OrganizationStatusInactive, state.Status)
	assert.Equal(suite.T(), 48, state.Subscription.AvailableSeats)
	require.Len(suite.T(), state.Locations, 1)
	assert.Equal(suite.T(), "Acme HQ", state.Locations[0].Name)
	assert.Len(suite.T(), state.Employees, 2)
	assert.Equal(suite.T(), suite.clock.Now(), state.CreatedAt)
}

func (suite *OrganizationServiceTestSuite) TestCreate_NoAdmins() {
	state, err := suite.service.Create(suite.ctx, &CreateOrganizationRequest{Name: "Acme"})
	assert.Nil(suite.T(), state)
	assert.ErrorIs(suite.T(), err, domain.ErrValidation)
	suite.repo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestCreate_RepositoryError() {
	suite.repo.On("Create", suite.ctx, mock.Anything).Return(errors.New("database down")).Once()

	state, err := suite.service.Create(suite.ctx, &CreateOrganizationRequest{
		Name:   "Acme",
		Admins: []EmployeeRequest{{FirstName: "Ada", LastName: "Lovelace", Email: "ada@acme.test"}},
	})
	assert.Nil(suite.T(), state)
	assert.EqualError(suite.T(), err, "database down")
}

func (suite *OrganizationServiceTestSuite) TestGet_CacheHit() {
	id := uuid.New()
	cached := &domain.OrganizationState{ID: id, Name: "Cached"}
	suite.cache.On("GetOrganization", suite.ctx, id).Return(cached, nil).Once()

	state, err := suite.service.Get(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Cached", state.Name)
	suite.repo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestGet_CacheMissLoadsAndFills() {
	org := suite.newOrganization(1)
	id := org.ID().UUID()

	suite.cache.On("GetOrganization", suite.ctx, id).Return(nil, nil).Once()
	suite.expectLoad(org)
	suite.cache.On("SetOrganization", suite.ctx, org.State()).Return(nil).Once()

	state, err := suite.service.Get(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), org.State(), *state)
}

func (suite *OrganizationServiceTestSuite) TestGet_CacheErrorFallsThrough() {
	org := suite.newOrganization(1)
	id := org.ID().UUID()

	suite.cache.On("GetOrganization", suite.ctx, id).Return(nil, errors.New("redis down")).Once()
	suite.expectLoad(org)
	suite.cache.On("SetOrganization", suite.ctx, mock.Anything).Return(errors.New("redis down")).Once()

	state, err := suite.service.Get(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, state.ID)
}

func (suite *OrganizationServiceTestSuite) TestGet_NotFound() {
	id := uuid.New()
	suite.cache.On("GetOrganization", suite.ctx, id).Return(nil, nil).Once()
	suite.repo.On("GetByID", suite.ctx, domain.OrganizationIDFrom(id)).
		Return(nil, repositories.ErrOrganizationNotFound).Once()

	state, err := suite.service.Get(suite.ctx, id)
	assert.Nil(suite.T(), state)
	assert.ErrorIs(suite.T(), err, repositories.ErrOrganizationNotFound)
}

func (suite *OrganizationServiceTestSuite) TestList_ClampsPaging() {
	suite.repo.On("List", suite.ctx, 100, 0).Return([]repositories.OrganizationSummary{}, nil).Once()

	summaries, err := suite.service.List(suite.ctx, 500, -3)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), summaries)
}

func (suite *OrganizationServiceTestSuite) TestActivate_Success() {
	org := suite.newOrganization(1)
	suite.expectLoad(org)
	suite.expectSaved(org)

	state, err := suite.service.Activate(suite.ctx, org.ID().UUID())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.OrganizationStatusActive, state.Status)
}

func (suite *OrganizationServiceTestSuite) TestActivate_InvalidStateSkipsSave() {
	org := suite.newOrganization(1)
	require.NoError(suite.T(), org.Activate())
	suite.expectLoad(org)

	state, err := suite.service.Activate(suite.ctx, org.ID().UUID())
	assert.Nil(suite.T(), state)
	assert.ErrorIs(suite.T(), err, domain.ErrInvalidState)
	suite.repo.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestMutate_ConcurrentModificationKeepsCache() {
	org := suite.newOrganization(1)
	suite.expectLoad(org)
	suite.repo.On("Save", suite.ctx, org).Return(repositories.ErrConcurrentModification).Once()

	_, err := suite.service.CancelSubscription(suite.ctx, org.ID().UUID())
	assert.ErrorIs(suite.T(), err, repositories.ErrConcurrentModification)
	suite.cache.AssertNotCalled(suite.T(), "SetOrganization", mock.Anything, mock.Anything)
	suite.cache.AssertNotCalled(suite.T(), "DeleteOrganization", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestMutate_WritesSavedStateThrough() {
	org := suite.newOrganization(1)
	suite.expectLoad(org)
	suite.repo.On("Save", suite.ctx, org).Run(func(mock.Arguments) {
		org.SetVersion(2)
	}).Return(nil).Once()
	suite.cache.On("SetOrganization", suite.ctx, mock.MatchedBy(func(s domain.OrganizationState) bool {
		return s.Version == 2 && s.Subscription.Status == domain.SubscriptionStatusCanceled
	})).Return(nil).Once()

	state, err := suite.service.CancelSubscription(suite.ctx, org.ID().UUID())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, state.Version)
	suite.cache.AssertNotCalled(suite.T(), "DeleteOrganization", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestMutate_CacheWriteFailureDropsEntry() {
	org := suite.newOrganization(1)
	suite.expectLoad(org)
	suite.repo.On("Save", suite.ctx, org).Return(nil).Once()
	suite.cache.On("SetOrganization", suite.ctx, mock.Anything).Return(errors.New("redis down")).Once()
	suite.cache.On("DeleteOrganization", suite.ctx, org.ID().UUID()).Return(nil).Once()

	_, err := suite.service.CancelSubscription(suite.ctx, org.ID().UUID())
	require.NoError(suite.T(), err)
}

func (suite *OrganizationServiceTestSuite) TestMutate_CacheInvalidationFailureIsNotFatal() {
	org := suite.newOrganization(1)
	suite.expectLoad(org)
	suite.repo.On("Save", suite.ctx, org).Return(nil).Once()
	suite.cache.On("SetOrganization", suite.ctx, mock.Anything).Return(errors.New("redis down")).Once()
	suite.cache.On("DeleteOrganization", suite.ctx, org.ID().UUID()).Return(errors.New("redis down")).Once()

	state, err := suite.service.CancelSubscription(suite.ctx, org.ID().UUID())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.SubscriptionStatusCanceled, state.Subscription.Status)
}

func (suite *OrganizationServiceTestSuite) TestArchive_ExportsFinalState() {
	org := suite.newOrganization(1)
	require.NoError(suite.T(), org.OnSubscriptionExpired())
	suite.expectLoad(org)
	suite.expectSaved(org)
	suite.exporter.On("Export", suite.ctx, mock.MatchedBy(func(s domain.OrganizationState) bool {
		return s.ID == org.ID().UUID() && s.Status == domain.OrganizationStatusArchived
	})).Return(org.ID().String()+".json", nil).Once()

	state, err := suite.service.Archive(suite.ctx, org.ID().UUID())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.OrganizationStatusArchived, state.Status)
}

func (suite *OrganizationServiceTestSuite) TestArchive_ExportFailureStillArchives() {
	org := suite.newOrganization(1)
	require.NoError(suite.T(), org.OnSubscriptionExpired())
	suite.expectLoad(org)
	suite.expectSaved(org)
	suite.exporter.On("Export", suite.ctx, mock.Anything).Return("", errors.New("bucket missing")).Once()

	state, err := suite.service.Archive(suite.ctx, org.ID().UUID())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.OrganizationStatusArchived, state.Status)
}

func (suite *OrganizationServiceTestSuite) TestArchive_RequiresExpiredSubscription() {
	org := suite.newOrganization(1)
	suite.expectLoad(org)

	_, err := suite.service.Archive(suite.ctx, org.ID().UUID())
	assert.ErrorIs(suite.T(), err, domain.ErrInvalidState)
	suite.exporter.AssertNotCalled(suite.T(), "Export", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestArchiveDownloadURL() {
	org := suite.archivedOrganization()
	id := org.ID().UUID()
	suite.expectLoad(org)
	suite.exporter.On("Exported", suite.ctx, id).Return(true, nil).Once()
	suite.exporter.On("DownloadURL", suite.ctx, id).Return("https://minio.local/signed", nil).Once()

	url, err := suite.service.ArchiveDownloadURL(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "https://minio.local/signed", url)
	suite.exporter.AssertNotCalled(suite.T(), "Export", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestArchiveDownloadURL_IgnoresStaleCache() {
	org := suite.archivedOrganization()
	id := org.ID().UUID()
	suite.cache.On("GetOrganization", mock.Anything, mock.Anything).
		Return(&domain.OrganizationState{ID: id, Status: domain.OrganizationStatusActive}, nil).Maybe()
	suite.expectLoad(org)
	suite.exporter.On("Exported", suite.ctx, id).Return(true, nil).Once()
	suite.exporter.On("DownloadURL", suite.ctx, id).Return("https://minio.local/signed", nil).Once()

	_, err := suite.service.ArchiveDownloadURL(suite.ctx, id)
	require.NoError(suite.T(), err)
	suite.cache.AssertNotCalled(suite.T(), "GetOrganization", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestArchiveDownloadURL_ReexportsMissingObject() {
	org := suite.archivedOrganization()
	id := org.ID().UUID()
	suite.expectLoad(org)
	suite.exporter.On("Exported", suite.ctx, id).Return(false, nil).Once()
	suite.exporter.On("Export", suite.ctx, mock.MatchedBy(func(s domain.OrganizationState) bool {
		return s.ID == id && s.Status == domain.OrganizationStatusArchived
	})).Return(id.String()+".json", nil).Once()
	suite.exporter.On("DownloadURL", suite.ctx, id).Return("https://minio.local/signed", nil).Once()

	url, err := suite.service.ArchiveDownloadURL(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "https://minio.local/signed", url)
}

func (suite *OrganizationServiceTestSuite) TestArchiveDownloadURL_ReexportFailure() {
	org := suite.archivedOrganization()
	id := org.ID().UUID()
	suite.expectLoad(org)
	suite.exporter.On("Exported", suite.ctx, id).Return(false, nil).Once()
	suite.exporter.On("Export", suite.ctx, mock.Anything).Return("", errors.New("bucket missing")).Once()

	_, err := suite.service.ArchiveDownloadURL(suite.ctx, id)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "bucket missing")
	suite.exporter.AssertNotCalled(suite.T(), "DownloadURL", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestArchiveDownloadURL_NotArchived() {
	org := suite.newOrganization(1)
	suite.expectLoad(org)

	_, err := suite.service.ArchiveDownloadURL(suite.ctx, org.ID().UUID())
	assert.ErrorIs(suite.T(), err, domain.ErrInvalidState)
	suite.exporter.AssertNotCalled(suite.T(), "Exported", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestActivateSubscription() {
	org := suite.newOrganization(2)
	suite.expectLoad(org)
	suite.expectSaved(org)
	expires := suite.clock.Now().AddDate(1, 0, 0)

	state, err := suite.service.ActivateSubscription(suite.ctx, org.ID().UUID(), &ActivateSubscriptionRequest{
		Plan: domain.SubscriptionPlanGold, ExpiresAt: expires, TotalSeats: 10,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.SubscriptionStatusActive, state.Subscription.Status)
	assert.Equal(suite.T(), domain.SubscriptionPlanGold, state.Subscription.Plan)
	assert.Equal(suite.T(), 8, state.Subscription.AvailableSeats)
}

func (suite *OrganizationServiceTestSuite) TestExpireLapsedSubscriptions() {
	lapsed := suite.newOrganization(1)
	conflicted := suite.newOrganization(1)
	suite.clock.Advance(15 * 24 * time.Hour)

	suite.repo.On("ListLapsedSubscriptions", suite.ctx, suite.clock.Now(), 50).
		Return([]domain.OrganizationID{lapsed.ID(), conflicted.ID()}, nil).Once()
	suite.expectLoad(lapsed)
	suite.expectSaved(lapsed)
	suite.expectLoad(conflicted)
	suite.repo.On("Save", suite.ctx, conflicted).Return(repositories.ErrConcurrentModification).Once()

	expired, err := suite.service.ExpireLapsedSubscriptions(suite.ctx, 50)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, expired)
	assert.Equal(suite.T(), domain.SubscriptionStatusExpired, lapsed.Subscription().Status())
}

func (suite *OrganizationServiceTestSuite) TestExpireLapsedSubscriptions_SkipsRenewed() {
	org := suite.newOrganization(1)
	suite.clock.Advance(15 * 24 * time.Hour)
	require.NoError(suite.T(), org.OnSubscriptionActivated(domain.SubscriptionPlanSilver, suite.clock.Now().AddDate(0, 1, 0), 5))

	suite.repo.On("ListLapsedSubscriptions", suite.ctx, mock.Anything, 10).
		Return([]domain.OrganizationID{org.ID()}, nil).Once()
	suite.expectLoad(org)

	expired, err := suite.service.ExpireLapsedSubscriptions(suite.ctx, 10)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, expired)
	suite.repo.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestExpireLapsedSubscriptions_QueryError() {
	suite.repo.On("ListLapsedSubscriptions", suite.ctx, mock.Anything, 10).
		Return(nil, errors.New("timeout")).Once()

	expired, err := suite.service.ExpireLapsedSubscriptions(suite.ctx, 10)
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 0, expired)
}

func (suite *OrganizationServiceTestSuite) TestAddLocation_DefaultHours() {
	org := suite.newOrganization(1)
	suite.expectLoad(org)
	suite.expectSaved(org)

	state, err := suite.service.AddLocation(suite.ctx, org.ID().UUID(), &LocationRequest{
		Name:    "Branch",
		Address: &domain.AddressState{Country: "NL", City: "Utrecht"},
	})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), state.Locations, 2)
	branch := state.Locations[1]
	assert.Equal(suite.T(), "Branch", branch.Name)
	assert.Equal(suite.T(), domain.DefaultOpeningHours().State(), branch.OpeningHours)
	require.NotNil(suite.T(), branch.Address)
	assert.Equal(suite.T(), "Utrecht", branch.Address.City)
}

func (suite *OrganizationServiceTestSuite) TestAddLocation_InvalidHours() {
	hours := domain.DefaultOpeningHours().State()
	hours[time.Monday] = domain.OpeningHoursRangeState{From: "18:00", To: "08:00", IsEnabled: true}

	state, err := suite.service.AddLocation(suite.ctx, uuid.New(), &LocationRequest{Name: "Branch", OpeningHours: hours})
	assert.Nil(suite.T(), state)
	assert.ErrorIs(suite.T(), err, domain.ErrValidation)
	suite.repo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestArchiveLocation_LastActive() {
	org := suite.newOrganization(1)
	hq := org.Locations()[0].ID()
	suite.expectLoad(org)

	_, err := suite.service.ArchiveLocation(suite.ctx, org.ID().UUID(), hq.UUID())
	assert.ErrorIs(suite.T(), err, domain.ErrInvalidState)
}

func (suite *OrganizationServiceTestSuite) TestUpdateLocation_UnknownLocation() {
	org := suite.newOrganization(1)
	suite.expectLoad(org)

	_, err := suite.service.UpdateLocation(suite.ctx, org.ID().UUID(), uuid.New(), &LocationRequest{Name: "Renamed"})
	assert.ErrorIs(suite.T(), err, domain.ErrNotFound)
}

func (suite *OrganizationServiceTestSuite) TestEmployeeLifecycle() {
	org := suite.newOrganization(1)
	hq := org.Locations()[0].ID().UUID()
	id := org.ID().UUID()

	suite.expectLoad(org)
	suite.expectSaved(org)
	state, err := suite.service.AddEmployee(suite.ctx, id, &AddEmployeeRequest{
		EmployeeRequest: EmployeeRequest{FirstName: "Linus", LastName: "Torvalds", Email: "linus@acme.test"},
		Role:            domain.EmployeeRoleEmployee,
		LocationIDs:     []uuid.UUID{hq},
	})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), state.Employees, 2)
	assert.Equal(suite.T(), 48, state.Subscription.AvailableSeats)
	employee := state.Employees[1].ID

	suite.expectLoad(org)
	suite.expectSaved(org)
	state, err = suite.service.InviteEmployee(suite.ctx, id, employee)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.EmployeeStatusInvited, state.Employees[1].Status)

	suite.expectLoad(org)
	suite.expectSaved(org)
	state, err = suite.service.ActivateEmployee(suite.ctx, id, employee)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.EmployeeStatusActive, state.Employees[1].Status)

	suite.expectLoad(org)
	suite.expectSaved(org)
	state, err = suite.service.AssignEmployee(suite.ctx, id, employee, hq)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []uuid.UUID{hq}, state.Employees[1].LocationIDs)

	suite.expectLoad(org)
	suite.expectSaved(org)
	state, err = suite.service.ArchiveEmployee(suite.ctx, id, employee)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.EmployeeStatusArchived, state.Employees[1].Status)
	assert.Equal(suite.T(), 49, state.Subscription.AvailableSeats)
}
