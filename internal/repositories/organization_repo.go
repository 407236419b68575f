package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orgmanager/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrOrganizationNotFound   = errors.New("organization not found")
	ErrConcurrentModification = errors.New("organization was modified concurrently")
)

// Database is the subset of pgxpool.Pool the repositories use.
type Database interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error)
	Save(ctx context.Context, org *domain.Organization) error
	List(ctx context.Context, limit, offset int) ([]OrganizationSummary, error)
	ListLapsedSubscriptions(ctx context.Context, now time.Time, limit int) ([]domain.OrganizationID, error)
}

// OrganizationSummary is the list view of an organization without its children.
type OrganizationSummary struct {
	ID           uuid.UUID                 `json:"id"`
	Name         string                    `json:"name"`
	Status       domain.OrganizationStatus `json:"status"`
	Subscription domain.SubscriptionState  `json:"subscription"`
	CreatedAt    time.Time                 `json:"createdAt"`
	UpdatedAt    *time.Time                `json:"updatedAt"`
}

type organizationRepo struct {
	db   Database
	opts []domain.Option
}

// NewOrganizationRepository returns a pgx-backed repository. opts are passed
// to every aggregate it restores.
func NewOrganizationRepository(db Database, opts ...domain.Option) OrganizationRepository {
	return &organizationRepo{db: db, opts: opts}
}

const (
	insertOrganizationSQL = `
		INSERT INTO organizations (id, name, status, subscription_plan, subscription_status,
			subscription_expires_at, total_seats, available_seats, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $10)
	`
	updateOrganizationSQL = `
		UPDATE organizations
		SET name = $1, status = $2, subscription_plan = $3, subscription_status = $4,
			subscription_expires_at = $5, total_seats = $6, available_seats = $7,
			updated_at = $8, version = version + 1
		WHERE id = $9 AND version = $10
	`
	upsertLocationSQL = `
		INSERT INTO organization_locations (id, organization_id, position, name, opening_hours, address,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, opening_hours = EXCLUDED.opening_hours, address = EXCLUDED.address,
			status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`
	upsertEmployeeSQL = `
		INSERT INTO organization_employees (id, organization_id, position, first_name, last_name, email,
			phone, status, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, email = EXCLUDED.email,
			phone = EXCLUDED.phone, status = EXCLUDED.status, role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
	`
	deleteAssignmentsSQL = `
		DELETE FROM organization_employee_locations
		WHERE employee_id IN (SELECT id FROM organization_employees WHERE organization_id = $1)
	`
	insertAssignmentSQL = `
		INSERT INTO organization_employee_locations (employee_id, location_id, position)
		VALUES ($1, $2, $3)
	`
	selectOrganizationSQL = `
		SELECT id, name, status, subscription_plan, subscription_status, subscription_expires_at,
			total_seats, available_seats, version, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	selectLocationsSQL = `
		SELECT id, organization_id, name, opening_hours, address, status, created_at, updated_at
		FROM organization_locations
		WHERE organization_id = $1
		ORDER BY position
	`
	selectEmployeesSQL = `
		SELECT id, organization_id, first_name, last_name, email, phone, status, role, created_at, updated_at
		FROM organization_employees
		WHERE organization_id = $1
		ORDER BY position
	`
	selectAssignmentsSQL = `
		SELECT el.employee_id, el.location_id
		FROM organization_employee_locations el
		JOIN organization_employees e ON e.id = el.employee_id
		WHERE e.organization_id = $1
		ORDER BY el.employee_id, el.position
	`
	listOrganizationsSQL = `
		SELECT id, name, status, subscription_plan, subscription_status, subscription_expires_at,
			total_seats, available_seats, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`
	listLapsedSQL = `
		SELECT id
		FROM organizations
		WHERE subscription_status <> $1 AND subscription_expires_at <= $2
		ORDER BY subscription_expires_at
		LIMIT $3
	`
)

// Create inserts a new aggregate with all of its children at version 1.
func (r *organizationRepo) Create(ctx context.Context, org *domain.Organization) error {
	state := org.State()
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		sub := state.Subscription
		_, err := tx.Exec(ctx, insertOrganizationSQL,
			state.ID, state.Name, int(state.Status), int(sub.Plan), int(sub.Status),
			sub.ExpiresAt, sub.TotalSeats, sub.AvailableSeats, state.CreatedAt, state.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert organization: %w", err)
		}
		return r.writeChildren(ctx, tx, state)
	})
	if err != nil {
		return err
	}
	org.SetVersion(1)
	return nil
}

// Save writes the aggregate if nobody else saved it since it was loaded.
func (r *organizationRepo) Save(ctx context.Context, org *domain.Organization) error {
	state := org.State()
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		sub := state.Subscription
		tag, err := tx.Exec(ctx, updateOrganizationSQL,
			state.Name, int(state.Status), int(sub.Plan), int(sub.Status), sub.ExpiresAt,
			sub.TotalSeats, sub.AvailableSeats, state.UpdatedAt, state.ID, state.Version)
		if err != nil {
			return fmt.Errorf("update organization: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrConcurrentModification
		}
		if _, err := tx.Exec(ctx, deleteAssignmentsSQL, state.ID); err != nil {
			return fmt.Errorf("clear assignments: %w", err)
		}
		return r.writeChildren(ctx, tx, state)
	})
	if err != nil {
		return err
	}
	org.SetVersion(state.Version + 1)
	return nil
}

func (r *organizationRepo) writeChildren(ctx context.Context, tx pgx.Tx, state domain.OrganizationState) error {
	for i, l := range state.Locations {
		hours, err := json.Marshal(l.OpeningHours)
		if err != nil {
			return fmt.Errorf("encode opening hours: %w", err)
		}
		var address []byte
		if l.Address != nil {
			if address, err = json.Marshal(l.Address); err != nil {
				return fmt.Errorf("encode address: %w", err)
			}
		}
		_, err = tx.Exec(ctx, upsertLocationSQL,
			l.ID, state.ID, i, l.Name, hours, address, int(l.Status), l.CreatedAt, l.UpdatedAt)
		if err != nil {
			return fmt.Errorf("write location %s: %w", l.ID, err)
		}
	}

	for i, e := range state.Employees {
		_, err := tx.Exec(ctx, upsertEmployeeSQL,
			e.ID, state.ID, i, e.FirstName, e.LastName, e.Email, e.Phone,
			int(e.Status), int(e.Role), e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("write employee %s: %w", e.ID, err)
		}
	}

	for _, e := range state.Employees {
		for pos, locationID := range e.LocationIDs {
			if _, err := tx.Exec(ctx, insertAssignmentSQL, e.ID, locationID, pos); err != nil {
				return fmt.Errorf("write assignment %s/%s: %w", e.ID, locationID, err)
			}
		}
	}
	return nil
}

func (r *organizationRepo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %v, original error: %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID loads the full aggregate.
func (r *organizationRepo) GetByID(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	var (
		state                   domain.OrganizationState
		status, plan, subStatus int
	)
	err := r.db.QueryRow(ctx, selectOrganizationSQL, id.UUID()).Scan(
		&state.ID, &state.Name, &status, &plan, &subStatus, &state.Subscription.ExpiresAt,
		&state.Subscription.TotalSeats, &state.Subscription.AvailableSeats, &state.Version,
		&state.CreatedAt, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("load organization: %w", err)
	}
	state.Status = domain.OrganizationStatus(status)
	state.Subscription.Plan = domain.SubscriptionPlan(plan)
	state.Subscription.Status = domain.SubscriptionStatus(subStatus)

	if state.Locations, err = r.loadLocations(ctx, state.ID); err != nil {
		return nil, err
	}
	if state.Employees, err = r.loadEmployees(ctx, state.ID); err != nil {
		return nil, err
	}
	if err := r.loadAssignments(ctx, state.ID, state.Employees); err != nil {
		return nil, err
	}

	org, err := domain.Restore(state, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("restore organization %s: %w", state.ID, err)
	}
	return org, nil
}

func (r *organizationRepo) loadLocations(ctx context.Context, orgID uuid.UUID) ([]domain.LocationState, error) {
	rows, err := r.db.Query(ctx, selectLocationsSQL, orgID)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	defer rows.Close()

	locations := []domain.LocationState{}
	for rows.Next() {
		var (
			l              domain.LocationState
			hours, address []byte
			status         int
		)
		if err := rows.Scan(&l.ID, &l.OrganizationID, &l.Name, &hours, &address, &status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		if err := json.Unmarshal(hours, &l.OpeningHours); err != nil {
			return nil, fmt.Errorf("decode opening hours of location %s: %w", l.ID, err)
		}
		if len(address) > 0 {
			l.Address = &domain.AddressState{}
			if err := json.Unmarshal(address, l.Address); err != nil {
				return nil, fmt.Errorf("decode address of location %s: %w", l.ID, err)
			}
		}
		l.Status = domain.LocationStatus(status)
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (r *organizationRepo) loadEmployees(ctx context.Context, orgID uuid.UUID) ([]domain.EmployeeState, error) {
	rows, err := r.db.Query(ctx, selectEmployeesSQL, orgID)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	defer rows.Close()

	employees := []domain.EmployeeState{}
	for rows.Next() {
		var (
			e            domain.EmployeeState
			status, role int
		)
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.FirstName, &e.LastName, &e.Email, &e.Phone,
			&status, &role, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		e.Status = domain.EmployeeStatus(status)
		e.Role = domain.EmployeeRole(role)
		e.LocationIDs = []uuid.UUID{}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *organizationRepo) loadAssignments(ctx context.Context, orgID uuid.UUID, employees []domain.EmployeeState) error {
	rows, err := r.db.Query(ctx, selectAssignmentsSQL, orgID)
	if err != nil {
		return fmt.Errorf("load assignments: %w", err)
	}
	defer rows.Close()

	index := make(map[uuid.UUID]int, len(employees))
	for i, e := range employees {
		index[e.ID] = i
	}
	for rows.Next() {
		var employeeID, locationID uuid.UUID
		if err := rows.Scan(&employeeID, &locationID); err != nil {
			return fmt.Errorf("scan assignment: %w", err)
		}
		if i, ok := index[employeeID]; ok {
			employees[i].LocationIDs = append(employees[i].LocationIDs, locationID)
		}
	}
	return rows.Err()
}

// List returns organization summaries, newest first.
func (r *organizationRepo) List(ctx context.Context, limit, offset int) ([]OrganizationSummary, error) {
	rows, err := r.db.Query(ctx, listOrganizationsSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	summaries := []OrganizationSummary{}
	for rows.Next() {
		var (
			s                       OrganizationSummary
			status, plan, subStatus int
		)
		if err := rows.Scan(&s.ID, &s.Name, &status, &plan, &subStatus, &s.Subscription.ExpiresAt,
			&s.Subscription.TotalSeats, &s.Subscription.AvailableSeats, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		s.Status = domain.OrganizationStatus(status)
		s.Subscription.Plan = domain.SubscriptionPlan(plan)
		s.Subscription.Status = domain.SubscriptionStatus(subStatus)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListLapsedSubscriptions returns organizations whose subscription passed its
// expiry but is not yet marked expired.
func (r *organizationRepo) ListLapsedSubscriptions(ctx context.Context, now time.Time, limit int) ([]domain.OrganizationID, error) {
	rows, err := r.db.Query(ctx, listLapsedSQL, int(domain.SubscriptionStatusExpired), now, limit)
	if err != nil {
		return nil, fmt.Errorf("list lapsed subscriptions: %w", err)
	}
	defer rows.Close()

	ids := []domain.OrganizationID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan organization id: %w", err)
		}
		ids = append(ids, domain.OrganizationIDFrom(id))
	}
	return ids, rows.Err()
}
