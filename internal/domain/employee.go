package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EmployeeData is the contact information used to create an employee.
type EmployeeData struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
}

func (d EmployeeData) validate() error {
	if strings.TrimSpace(d.FirstName) == "" {
		return NewValidationError("firstName", "first name is required")
	}
	if strings.TrimSpace(d.LastName) == "" {
		return NewValidationError("lastName", "last name is required")
	}
	if strings.TrimSpace(d.Email) == "" {
		return NewValidationError("email", "email is required")
	}
	return nil
}

// Employee is a member of an organization. It is mutated only through its
// owning Organization.
type Employee struct {
	id             EmployeeID
	organizationID OrganizationID
	firstName      string
	lastName       string
	email          string
	phone          *string
	status         EmployeeStatus
	role           EmployeeRole
	locationIDs    []LocationID
	createdAt      time.Time
	updatedAt      *time.Time
}

func newEmployee(id EmployeeID, organizationID OrganizationID, role EmployeeRole, data EmployeeData, now time.Time) (*Employee, error) {
	if !role.valid() {
		return nil, NewValidationError("role", "unknown employee role")
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &Employee{
		id:             id,
		organizationID: organizationID,
		firstName:      strings.TrimSpace(data.FirstName),
		lastName:       strings.TrimSpace(data.LastName),
		email:          strings.TrimSpace(data.Email),
		phone:          normalizePhone(data.Phone),
		status:         EmployeeStatusInactive,
		role:           role,
		createdAt:      now,
	}, nil
}

func newAdminEmployee(id EmployeeID, organizationID OrganizationID, locationID LocationID, data EmployeeData, now time.Time) (*Employee, error) {
	e, err := newEmployee(id, organizationID, EmployeeRoleAdmin, data, now)
	if err != nil {
		return nil, err
	}
	e.locationIDs = []LocationID{locationID}
	return e, nil
}

// assignToLocation ignores ids already assigned, so the set never holds duplicates.
func (e *Employee) assignToLocation(locationID LocationID, now time.Time) error {
	if err := e.checkAssign(); err != nil {
		return err
	}
	if e.IsAssignedTo(locationID) {
		return nil
	}
	e.locationIDs = append(e.locationIDs, locationID)
	e.touch(now)
	return nil
}

func (e *Employee) checkAssign() error {
	if e.status == EmployeeStatusArchived {
		return NewInvalidStateError("employee %s is archived", e.id)
	}
	return nil
}

func (e *Employee) invite(now time.Time) error {
	if e.status != EmployeeStatusInactive {
		return NewInvalidStateError("employee %s cannot be invited while %s", e.id, e.status)
	}
	e.status = EmployeeStatusInvited
	e.touch(now)
	return nil
}

func (e *Employee) activate(now time.Time) error {
	if e.status != EmployeeStatusInactive && e.status != EmployeeStatusInvited {
		return NewInvalidStateError("employee %s cannot be activated while %s", e.id, e.status)
	}
	e.status = EmployeeStatusActive
	e.touch(now)
	return nil
}

func (e *Employee) archive(now time.Time) error {
	if err := e.checkArchive(); err != nil {
		return err
	}
	e.status = EmployeeStatusArchived
	e.touch(now)
	return nil
}

func (e *Employee) checkArchive() error {
	if e.status == EmployeeStatusArchived {
		return NewInvalidStateError("employee %s is already archived", e.id)
	}
	return nil
}

func (e *Employee) touch(now time.Time) {
	e.updatedAt = &now
}

func (e *Employee) ID() EmployeeID                 { return e.id }
func (e *Employee) OrganizationID() OrganizationID { return e.organizationID }
func (e *Employee) FirstName() string              { return e.firstName }
func (e *Employee) LastName() string               { return e.lastName }
func (e *Employee) Email() string                  { return e.email }
func (e *Employee) Status() EmployeeStatus         { return e.status }
func (e *Employee) Role() EmployeeRole             { return e.role }
func (e *Employee) CreatedAt() time.Time           { return e.createdAt }
func (e *Employee) IsActive() bool                 { return e.status == EmployeeStatusActive }
func (e *Employee) IsArchived() bool               { return e.status == EmployeeStatusArchived }
func (e *Employee) IsAdmin() bool                  { return e.role == EmployeeRoleAdmin }

// Phone returns the phone number, if one is set.
func (e *Employee) Phone() (string, bool) {
	if e.phone == nil {
		return "", false
	}
	return *e.phone, true
}

// UpdatedAt returns the last modification time, if the employee was ever modified.
func (e *Employee) UpdatedAt() (time.Time, bool) {
	if e.updatedAt == nil {
		return time.Time{}, false
	}
	return *e.updatedAt, true
}

// LocationIDs returns the assigned locations in assignment order.
func (e *Employee) LocationIDs() []LocationID {
	return slices.Clone(e.locationIDs)
}

func (e *Employee) IsAssignedTo(locationID LocationID) bool {
	return slices.Contains(e.locationIDs, locationID)
}

func (e *Employee) clone() *Employee {
	c := *e
	c.phone = clonePhone(e.phone)
	c.locationIDs = slices.Clone(e.locationIDs)
	c.updatedAt = cloneTime(e.updatedAt)
	return &c
}

// EmployeeState is the plain data form of an Employee.
type EmployeeState struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organizationId"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email"`
	Phone          *string        `json:"phone"`
	Status         EmployeeStatus `json:"status"`
	Role           EmployeeRole   `json:"role"`
	LocationIDs    []uuid.UUID    `json:"locationIds"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      *time.Time     `json:"updatedAt"`
}

func (e *Employee) State() EmployeeState {
	ids := make([]uuid.UUID, len(e.locationIDs))
	for i, id := range e.locationIDs {
		ids[i] = id.UUID()
	}
	return EmployeeState{
		ID:             e.id.UUID(),
		OrganizationID: e.organizationID.UUID(),
		FirstName:      e.firstName,
		LastName:       e.lastName,
		Email:          e.email,
		Phone:          clonePhone(e.phone),
		Status:         e.status,
		Role:           e.role,
		LocationIDs:    ids,
		CreatedAt:      e.createdAt,
		UpdatedAt:      cloneTime(e.updatedAt),
	}
}

func restoreEmployee(state EmployeeState) (*Employee, error) {
	if !state.Status.valid() {
		return nil, NewValidationError("status", "unknown employee status")
	}
	if !state.Role.valid() {
		return nil, NewValidationError("role", "unknown employee role")
	}
	e := &Employee{
		id:             EmployeeIDFrom(state.ID),
		organizationID: OrganizationIDFrom(state.OrganizationID),
		firstName:      state.FirstName,
		lastName:       state.LastName,
		email:          state.Email,
		phone:          clonePhone(state.Phone),
		status:         state.Status,
		role:           state.Role,
		createdAt:      state.CreatedAt,
		updatedAt:      cloneTime(state.UpdatedAt),
	}
	for _, id := range state.LocationIDs {
		locationID := LocationIDFrom(id)
		if !e.IsAssignedTo(locationID) {
			e.locationIDs = append(e.locationIDs, locationID)
		}
	}
	return e, nil
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	p := strings.TrimSpace(*phone)
	if p == "" {
		return nil
	}
	return &p
}

func clonePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	p := *phone
	return &p
}
