package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orgmanager/internal/caching"
	"orgmanager/internal/domain"
	"orgmanager/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type OrganizationService interface {
	Create(ctx context.Context, req *CreateOrganizationRequest) (*domain.OrganizationState, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error)
	List(ctx context.Context, limit, offset int) ([]repositories.OrganizationSummary, error)
	Activate(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error)
	Archive(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error)
	ArchiveDownloadURL(ctx context.Context, id uuid.UUID) (string, error)

	CancelSubscription(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error)
	ExpireSubscription(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error)
	ActivateSubscription(ctx context.Context, id uuid.UUID, req *ActivateSubscriptionRequest) (*domain.OrganizationState, error)
	ExpireLapsedSubscriptions(ctx context.Context, batch int) (int, error)

	AddLocation(ctx context.Context, id uuid.UUID, req *LocationRequest) (*domain.OrganizationState, error)
	UpdateLocation(ctx context.Context, id, locationID uuid.UUID, req *LocationRequest) (*domain.OrganizationState, error)
	ActivateLocation(ctx context.Context, id, locationID uuid.UUID) (*domain.OrganizationState, error)
	ArchiveLocation(ctx context.Context, id, locationID uuid.UUID) (*domain.OrganizationState, error)

	AddEmployee(ctx context.Context, id uuid.UUID, req *AddEmployeeRequest) (*domain.OrganizationState, error)
	AssignEmployee(ctx context.Context, id, employeeID, locationID uuid.UUID) (*domain.OrganizationState, error)
	InviteEmployee(ctx context.Context, id, employeeID uuid.UUID) (*domain.OrganizationState, error)
	ActivateEmployee(ctx context.Context, id, employeeID uuid.UUID) (*domain.OrganizationState, error)
	ArchiveEmployee(ctx context.Context, id, employeeID uuid.UUID) (*domain.OrganizationState, error)
}

type EmployeeRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
}

func (r EmployeeRequest) data() domain.EmployeeData {
	return domain.EmployeeData{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Phone: r.Phone}
}

type CreateOrganizationRequest struct {
	Name   string            `json:"name"`
	Admins []EmployeeRequest `json:"admins"`
}

// LocationRequest describes a new or updated location. A nil OpeningHours
// means the default 09:00-17:00 week.
type LocationRequest struct {
	Name         string                   `json:"name"`
	OpeningHours domain.OpeningHoursState `json:"openingHours"`
	Address      *domain.AddressState     `json:"address"`
}

func (r *LocationRequest) values() (domain.OpeningHours, *domain.Address, error) {
	hours := domain.DefaultOpeningHours()
	if r.OpeningHours != nil {
		var err error
		if hours, err = domain.RestoreOpeningHours(r.OpeningHours); err != nil {
			return domain.OpeningHours{}, nil, err
		}
	}
	var address *domain.Address
	if r.Address != nil {
		a := domain.RestoreAddress(*r.Address)
		address = &a
	}
	return hours, address, nil
}

type AddEmployeeRequest struct {
	EmployeeRequest
	Role        domain.EmployeeRole `json:"role"`
	LocationIDs []uuid.UUID         `json:"locationIds"`
}

type ActivateSubscriptionRequest struct {
	Plan       domain.SubscriptionPlan `json:"plan"`
	ExpiresAt  time.Time               `json:"expiresAt"`
	TotalSeats int                     `json:"totalSeats"`
}

type organizationService struct {
	repo     repositories.OrganizationRepository
	cache    caching.CacheService
	exporter ArchiveExporter
	clock    clockwork.Clock
	opts     []domain.Option
	logger   zerolog.Logger
}

// NewOrganizationService wires the aggregate to storage. The clock drives both
// new aggregates and the lapsed-subscription sweep.
func NewOrganizationService(repo repositories.OrganizationRepository, cache caching.CacheService,
	exporter ArchiveExporter, clock clockwork.Clock, logger zerolog.Logger) OrganizationService {
	return &organizationService{
		repo:     repo,
		cache:    cache,
		exporter: exporter,
		clock:    clock,
		opts:     []domain.Option{domain.WithClock(clock)},
		logger:   logger.With().Str("component", "organization_service").Logger(),
	}
}

func (s *organizationService) Create(ctx context.Context, req *CreateOrganizationRequest) (*domain.OrganizationState, error) {
	admins := make([]domain.EmployeeData, len(req.Admins))
	for i, a := range req.Admins {
		admins[i] = a.data()
	}

	org, err := domain.CreateFromAdmins(req.Name, admins, s.opts...)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}

	state := org.State()
	s.logger.Info().
		Str("organization_id", state.ID.String()).
		Int("admins", len(admins)).
		Msg("organization created")
	return &state, nil
}

func (s *organizationService) Get(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error) {
	cached, err := s.cache.GetOrganization(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("organization_id", id.String()).Msg("cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	org, err := s.repo.GetByID(ctx, domain.OrganizationIDFrom(id))
	if err != nil {
		return nil, err
	}
	state := org.State()
	if err := s.cache.SetOrganization(ctx, state); err != nil {
		s.logger.Warn().Err(err).Str("organization_id", id.String()).Msg("cache write failed")
	}
	return &state, nil
}

func (s *organizationService) List(ctx context.Context, limit, offset int) ([]repositories.OrganizationSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *organizationService) Activate(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error) {
	return s.mutate(ctx, id, "activate", func(org *domain.Organization) error {
		return org.Activate()
	})
}

// Archive archives the organization and exports its final state. An export
// failure is logged; the archive itself stands.
func (s *organizationService) Archive(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error) {
	state, err := s.mutate(ctx, id, "archive", func(org *domain.Organization) error {
		return org.Archive()
	})
	if err != nil {
		return nil, err
	}

	objectName, err := s.exporter.Export(ctx, *state)
	if err != nil {
		s.logger.Error().Err(err).Str("organization_id", id.String()).Msg("archive export failed")
		return state, nil
	}
	s.logger.Info().Str("organization_id", id.String()).Str("object", objectName).Msg("archive exported")
	return state, nil
}

// ArchiveDownloadURL presigns the archive export. The status is read from the
// repository, and a missing export is written again before signing.
func (s *organizationService) ArchiveDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	org, err := s.repo.GetByID(ctx, domain.OrganizationIDFrom(id))
	if err != nil {
		return "", err
	}
	if !org.IsArchived() {
		return "", domain.NewInvalidStateError("organization is not archived")
	}

	exported, err := s.exporter.Exported(ctx, id)
	if err != nil {
		return "", fmt.Errorf("check archive export: %w", err)
	}
	if !exported {
		objectName, err := s.exporter.Export(ctx, org.State())
		if err != nil {
			return "", fmt.Errorf("re-export archive: %w", err)
		}
		s.logger.Info().Str("organization_id", id.String()).Str("object", objectName).Msg("archive re-exported")
	}
	return s.exporter.DownloadURL(ctx, id)
}

func (s *organizationService) CancelSubscription(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error) {
	return s.mutate(ctx, id, "cancel_subscription", func(org *domain.Organization) error {
		return org.OnSubscriptionCanceled()
	})
}

func (s *organizationService) ExpireSubscription(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error) {
	return s.mutate(ctx, id, "expire_subscription", func(org *domain.Organization) error {
		return org.OnSubscriptionExpired()
	})
}

func (s *organizationService) ActivateSubscription(ctx context.Context, id uuid.UUID, req *ActivateSubscriptionRequest) (*domain.OrganizationState, error) {
	return s.mutate(ctx, id, "activate_subscription", func(org *domain.Organization) error {
		return org.OnSubscriptionActivated(req.Plan, req.ExpiresAt, req.TotalSeats)
	})
}

// ExpireLapsedSubscriptions expires up to batch subscriptions whose expiry has
// passed and returns how many were expired. Per-organization failures are
// logged and skipped.
func (s *organizationService) ExpireLapsedSubscriptions(ctx context.Context, batch int) (int, error) {
	now := s.clock.Now()
	ids, err := s.repo.ListLapsedSubscriptions(ctx, now, batch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		_, err := s.mutate(ctx, id.UUID(), "expire_lapsed_subscription", func(org *domain.Organization) error {
			if !org.Subscription().Lapsed(now) {
				return errNotLapsed
			}
			return org.OnSubscriptionExpired()
		})
		switch {
		case err == nil:
			expired++
		case errors.Is(err, errNotLapsed):
		default:
			s.logger.Warn().Err(err).Str("organization_id", id.String()).Msg("failed to expire subscription")
		}
	}
	return expired, nil
}

var errNotLapsed = errors.New("subscription no longer lapsed")

func (s *organizationService) AddLocation(ctx context.Context, id uuid.UUID, req *LocationRequest) (*domain.OrganizationState, error) {
	hours, address, err := req.values()
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, "add_location", func(org *domain.Organization) error {
		_, err := org.AddLocation(req.Name, hours, address)
		return err
	})
}

func (s *organizationService) UpdateLocation(ctx context.Context, id, locationID uuid.UUID, req *LocationRequest) (*domain.OrganizationState, error) {
	hours, address, err := req.values()
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, "update_location", func(org *domain.Organization) error {
		return org.UpdateLocation(domain.LocationIDFrom(locationID), req.Name, hours, address)
	})
}

func (s *organizationService) ActivateLocation(ctx context.Context, id, locationID uuid.UUID) (*domain.OrganizationState, error) {
	return s.mutate(ctx, id, "activate_location", func(org *domain.Organization) error {
		return org.ActivateLocation(domain.LocationIDFrom(locationID))
	})
}

func (s *organizationService) ArchiveLocation(ctx context.Context, id, locationID uuid.UUID) (*domain.OrganizationState, error) {
	return s.mutate(ctx, id, "archive_location", func(org *domain.Organization) error {
		return org.ArchiveLocation(domain.LocationIDFrom(locationID))
	})
}

func (s *organizationService) AddEmployee(ctx context.Context, id uuid.UUID, req *AddEmployeeRequest) (*domain.OrganizationState, error) {
	locationIDs := make([]domain.LocationID, len(req.LocationIDs))
	for i, l := range req.LocationIDs {
		locationIDs[i] = domain.LocationIDFrom(l)
	}
	return s.mutate(ctx, id, "add_employee", func(org *domain.Organization) error {
		_, err := org.AddEmployee(req.Role, req.data(), locationIDs)
		return err
	})
}

func (s *organizationService) AssignEmployee(ctx context.Context, id, employeeID, locationID uuid.UUID) (*domain.OrganizationState, error) {
	return s.mutate(ctx, id, "assign_employee", func(org *domain.Organization) error {
		return org.AssignEmployeeToLocation(domain.EmployeeIDFrom(employeeID), domain.LocationIDFrom(locationID))
	})
}

func (s *organizationService) InviteEmployee(ctx context.Context, id, employeeID uuid.UUID) (*domain.OrganizationState, error) {
	return s.mutate(ctx, id, "invite_employee", func(org *domain.Organization) error {
		return org.InviteEmployee(domain.EmployeeIDFrom(employeeID))
	})
}

func (s *organizationService) ActivateEmployee(ctx context.Context, id, employeeID uuid.UUID) (*domain.OrganizationState, error) {
	return s.mutate(ctx, id, "activate_employee", func(org *domain.Organization) error {
		return org.ActivateEmployee(domain.EmployeeIDFrom(employeeID))
	})
}

func (s *organizationService) ArchiveEmployee(ctx context.Context, id, employeeID uuid.UUID) (*domain.OrganizationState, error) {
	return s.mutate(ctx, id, "archive_employee", func(org *domain.Organization) error {
		return org.ArchiveEmployee(domain.EmployeeIDFrom(employeeID))
	})
}

// mutate loads the aggregate, applies one operation and saves it. The saved
// state is written through to the cache; if that fails the entry is dropped.
func (s *organizationService) mutate(ctx context.Context, id uuid.UUID, op string, fn func(*domain.Organization) error) (*domain.OrganizationState, error) {
	org, err := s.repo.GetByID(ctx, domain.OrganizationIDFrom(id))
	if err != nil {
		return nil, err
	}
	if err := fn(org); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, org); err != nil {
		return nil, err
	}

	state := org.State()
	if err := s.cache.SetOrganization(ctx, state); err != nil {
		s.logger.Warn().Err(err).Str("organization_id", id.String()).Msg("cache write failed")
		if err := s.cache.DeleteOrganization(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("organization_id", id.String()).Msg("cache invalidation failed")
		}
	}

	s.logger.Info().
		Str("organization_id", id.String()).
		Str("op", op).
		Int("version", state.Version).
		Msg("organization updated")
	return &state, nil
}
