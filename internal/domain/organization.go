package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Organization is the aggregate root owning locations and employees. Every
// mutating method validates before it changes anything, so a returned error
// means the aggregate is untouched.
type Organization struct {
	id           OrganizationID
	name         string
	subscription Subscription
	status       OrganizationStatus
	createdAt    time.Time
	updatedAt    *time.Time
	version      int
	locations    []*Location
	employees    []*Employee

	rt runtime
}

// CreateFromAdmins builds a new inactive organization on a trial subscription,
// with a headquarters location and one admin per entry assigned to it.
func CreateFromAdmins(name string, admins []EmployeeData, opts ...Option) (*Organization, error) {
	rt := newRuntime(opts)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "organization name is required")
	}
	if len(admins) == 0 {
		return nil, NewValidationError("admins", "at least one admin is required")
	}
	if len(admins) > TrialSeatLimit {
		return nil, NewValidationError("admins", fmt.Sprintf("at most %d admins fit in a trial subscription", TrialSeatLimit))
	}
	for i, admin := range admins {
		if err := admin.validate(); err != nil {
			if vErr, ok := IsValidationError(err); ok {
				return nil, NewValidationError(fmt.Sprintf("admins[%d].%s", i, vErr.Field), vErr.Message)
			}
			return nil, err
		}
	}

	now := rt.now()
	org := &Organization{
		id:           OrganizationIDFrom(rt.newID()),
		name:         name,
		subscription: NewTrialSubscription(len(admins), now),
		status:       OrganizationStatusInactive,
		createdAt:    now,
		rt:           rt,
	}

	hq := newDefaultLocation(LocationIDFrom(rt.newID()), org.id, name, now)
	org.locations = append(org.locations, hq)

	for _, admin := range admins {
		e, err := newAdminEmployee(EmployeeIDFrom(rt.newID()), org.id, hq.id, admin, now)
		if err != nil {
			return nil, err
		}
		org.employees = append(org.employees, e)
	}

	return org, nil
}

func (o *Organization) ID() OrganizationID         { return o.id }
func (o *Organization) Name() string               { return o.name }
func (o *Organization) Subscription() Subscription { return o.subscription }
func (o *Organization) Status() OrganizationStatus { return o.status }
func (o *Organization) CreatedAt() time.Time       { return o.createdAt }
func (o *Organization) IsArchived() bool           { return o.status == OrganizationStatusArchived }

// Version is the persistence revision the aggregate was loaded at.
func (o *Organization) Version() int { return o.version }

// SetVersion records the revision written by the persistence layer.
func (o *Organization) SetVersion(v int) { o.version = v }

// UpdatedAt returns the last modification time, if the organization was ever modified.
func (o *Organization) UpdatedAt() (time.Time, bool) {
	if o.updatedAt == nil {
		return time.Time{}, false
	}
	return *o.updatedAt, true
}

// Locations returns copies of the locations in insertion order.
func (o *Organization) Locations() []*Location {
	out := make([]*Location, len(o.locations))
	for i, l := range o.locations {
		out[i] = l.clone()
	}
	return out
}

// Employees returns copies of the employees in insertion order.
func (o *Organization) Employees() []*Employee {
	out := make([]*Employee, len(o.employees))
	for i, e := range o.employees {
		out[i] = e.clone()
	}
	return out
}

// Location returns a copy of the location with the given id.
func (o *Organization) Location(id LocationID) (*Location, error) {
	l, err := o.findLocation(id)
	if err != nil {
		return nil, err
	}
	return l.clone(), nil
}

// Employee returns a copy of the employee with the given id.
func (o *Organization) Employee(id EmployeeID) (*Employee, error) {
	e, err := o.findEmployee(id)
	if err != nil {
		return nil, err
	}
	return e.clone(), nil
}

func (o *Organization) ActiveLocationCount() int {
	n := 0
	for _, l := range o.locations {
		if l.IsActive() {
			n++
		}
	}
	return n
}

// Activate moves an inactive organization to active.
func (o *Organization) Activate() error {
	switch o.status {
	case OrganizationStatusArchived:
		return NewInvalidStateError("organization is archived")
	case OrganizationStatusActive:
		return NewInvalidStateError("organization is already active")
	}
	if o.subscription.IsTerminal() {
		return NewInvalidStateError("cannot activate organization with a %s subscription", o.subscription.Status())
	}

	o.status = OrganizationStatusActive
	o.touch()
	return nil
}

// Archive archives the organization once its subscription has expired.
// Locations and non-admin employees are archived with it, releasing their
// seats; admins stay so the tenant record remains addressable.
func (o *Organization) Archive() error {
	if o.status == OrganizationStatusArchived {
		return NewInvalidStateError("organization is already archived")
	}
	if !o.subscription.IsExpired() {
		return NewInvalidStateError("cannot archive organization while subscription is still valid")
	}

	now := o.rt.now()
	for _, l := range o.locations {
		if !l.IsArchived() {
			l.status = LocationStatusArchived
			l.touch(now)
		}
	}
	released := 0
	for _, e := range o.employees {
		if !e.IsAdmin() && !e.IsArchived() {
			e.status = EmployeeStatusArchived
			e.touch(now)
			released++
		}
	}
	if released > 0 {
		seats := min(o.subscription.availableSeats+released, o.subscription.totalSeats)
		o.subscription = o.subscription.withAvailableSeats(seats)
	}
	o.status = OrganizationStatusArchived
	o.updatedAt = &now
	return nil
}

// OnSubscriptionCanceled replaces the subscription with a canceled copy.
func (o *Organization) OnSubscriptionCanceled() error {
	if o.subscription.IsTerminal() {
		return NewInvalidStateError("subscription is already canceled or expired")
	}

	s := o.subscription
	o.subscription = NewCanceledSubscription(s.plan, s.expiresAt, s.totalSeats, s.availableSeats)
	o.touch()
	return nil
}

// OnSubscriptionExpired replaces the subscription with an expired copy.
func (o *Organization) OnSubscriptionExpired() error {
	if o.subscription.IsExpired() {
		return NewInvalidStateError("subscription is already expired")
	}

	s := o.subscription
	o.subscription = NewExpiredSubscription(s.plan, s.expiresAt, s.totalSeats, s.availableSeats)
	o.touch()
	return nil
}

// OnSubscriptionActivated converts a trial or active subscription to a paid
// one, keeping the seats already in use.
func (o *Organization) OnSubscriptionActivated(plan SubscriptionPlan, expiresAt time.Time, totalSeats int) error {
	if o.subscription.IsTerminal() {
		return NewInvalidStateError("cannot activate a %s subscription", o.subscription.Status())
	}
	used := o.subscription.UsedSeats()
	if totalSeats < used {
		return NewValidationError("totalSeats", fmt.Sprintf("%d seats are already in use", used))
	}
	next, err := NewActiveSubscription(plan, expiresAt, totalSeats, totalSeats-used)
	if err != nil {
		return err
	}

	o.subscription = next
	o.touch()
	return nil
}

// AddLocation appends a new active location.
func (o *Organization) AddLocation(name string, hours OpeningHours, address *Address) (LocationID, error) {
	if err := o.checkWritable(); err != nil {
		return LocationID{}, err
	}

	now := o.rt.now()
	l, err := newLocation(LocationIDFrom(o.rt.newID()), o.id, name, hours, address, now)
	if err != nil {
		return LocationID{}, err
	}

	o.locations = append(o.locations, l)
	o.updatedAt = &now
	return l.id, nil
}

func (o *Organization) UpdateLocation(id LocationID, name string, hours OpeningHours, address *Address) error {
	if err := o.checkWritable(); err != nil {
		return err
	}
	l, err := o.findLocation(id)
	if err != nil {
		return err
	}
	if err := l.checkUpdate(name); err != nil {
		return err
	}

	now := o.rt.now()
	if err := l.update(name, hours, address, now); err != nil {
		return err
	}
	o.updatedAt = &now
	return nil
}

func (o *Organization) ActivateLocation(id LocationID) error {
	if err := o.checkWritable(); err != nil {
		return err
	}
	l, err := o.findLocation(id)
	if err != nil {
		return err
	}
	if err := l.checkActivate(); err != nil {
		return err
	}

	now := o.rt.now()
	if err := l.activate(now); err != nil {
		return err
	}
	o.updatedAt = &now
	return nil
}

// ArchiveLocation archives a location unless it is the last active one or the
// only remaining assignment of an active employee.
func (o *Organization) ArchiveLocation(id LocationID) error {
	l, err := o.findLocation(id)
	if err != nil {
		return err
	}
	if err := l.checkArchive(); err != nil {
		return err
	}
	if o.ActiveLocationCount() < 2 {
		return NewInvalidStateError("cannot archive the last active location")
	}
	for _, e := range o.employees {
		if e.IsActive() && o.isSoleAssignment(e, id) {
			return NewInvalidStateError("location %s is the only assignment of active employee %s; reassign the employee first", id, e.id)
		}
	}

	now := o.rt.now()
	if err := l.archive(now); err != nil {
		return err
	}
	o.updatedAt = &now
	return nil
}

// isSoleAssignment reports whether locationID is the only non-archived
// location the employee is assigned to.
func (o *Organization) isSoleAssignment(e *Employee, locationID LocationID) bool {
	if !e.IsAssignedTo(locationID) {
		return false
	}
	for _, assigned := range e.locationIDs {
		if assigned == locationID {
			continue
		}
		if l, err := o.findLocation(assigned); err == nil && !l.IsArchived() {
			return false
		}
	}
	return true
}

// AddEmployee creates an inactive employee, consuming one subscription seat.
func (o *Organization) AddEmployee(role EmployeeRole, data EmployeeData, locationIDs []LocationID) (EmployeeID, error) {
	if err := o.checkWritable(); err != nil {
		return EmployeeID{}, err
	}
	if o.subscription.AvailableSeats() < 1 {
		return EmployeeID{}, NewInvalidStateError("no seats available on the subscription")
	}
	for _, id := range locationIDs {
		if err := o.checkAssignableLocation(id); err != nil {
			return EmployeeID{}, err
		}
	}

	now := o.rt.now()
	e, err := newEmployee(EmployeeIDFrom(o.rt.newID()), o.id, role, data, now)
	if err != nil {
		return EmployeeID{}, err
	}
	for _, id := range locationIDs {
		if !e.IsAssignedTo(id) {
			e.locationIDs = append(e.locationIDs, id)
		}
	}

	o.employees = append(o.employees, e)
	o.subscription = o.subscription.withAvailableSeats(o.subscription.availableSeats - 1)
	o.updatedAt = &now
	return e.id, nil
}

// AssignEmployeeToLocation adds a location to an employee; repeated
// assignments are no-ops.
func (o *Organization) AssignEmployeeToLocation(employeeID EmployeeID, locationID LocationID) error {
	if err := o.checkWritable(); err != nil {
		return err
	}
	e, err := o.findEmployee(employeeID)
	if err != nil {
		return err
	}
	if err := o.checkAssignableLocation(locationID); err != nil {
		return err
	}
	if err := e.checkAssign(); err != nil {
		return err
	}
	if e.IsAssignedTo(locationID) {
		return nil
	}

	now := o.rt.now()
	if err := e.assignToLocation(locationID, now); err != nil {
		return err
	}
	o.updatedAt = &now
	return nil
}

func (o *Organization) InviteEmployee(id EmployeeID) error {
	if err := o.checkWritable(); err != nil {
		return err
	}
	e, err := o.findEmployee(id)
	if err != nil {
		return err
	}

	now := o.rt.now()
	if err := e.invite(now); err != nil {
		return err
	}
	o.updatedAt = &now
	return nil
}

func (o *Organization) ActivateEmployee(id EmployeeID) error {
	if err := o.checkWritable(); err != nil {
		return err
	}
	e, err := o.findEmployee(id)
	if err != nil {
		return err
	}

	now := o.rt.now()
	if err := e.activate(now); err != nil {
		return err
	}
	o.updatedAt = &now
	return nil
}

// ArchiveEmployee archives an employee and releases its seat. The last
// remaining admin cannot be archived.
func (o *Organization) ArchiveEmployee(id EmployeeID) error {
	if o.status == OrganizationStatusArchived {
		return NewInvalidStateError("organization is archived")
	}
	e, err := o.findEmployee(id)
	if err != nil {
		return err
	}
	if err := e.checkArchive(); err != nil {
		return err
	}
	if e.IsAdmin() && o.unarchivedAdminCount() < 2 {
		return NewInvalidStateError("cannot archive the last admin")
	}

	now := o.rt.now()
	if err := e.archive(now); err != nil {
		return err
	}
	if seats := o.subscription.availableSeats + 1; seats <= o.subscription.totalSeats {
		o.subscription = o.subscription.withAvailableSeats(seats)
	}
	o.updatedAt = &now
	return nil
}

func (o *Organization) unarchivedAdminCount() int {
	n := 0
	for _, e := range o.employees {
		if e.IsAdmin() && !e.IsArchived() {
			n++
		}
	}
	return n
}

// checkWritable guards operations that need a live tenant.
func (o *Organization) checkWritable() error {
	if o.subscription.IsExpired() {
		return NewInvalidStateError("subscription is expired")
	}
	if o.status == OrganizationStatusArchived {
		return NewInvalidStateError("organization is archived")
	}
	return nil
}

func (o *Organization) checkAssignableLocation(id LocationID) error {
	l, err := o.findLocation(id)
	if err != nil {
		return err
	}
	if l.IsArchived() {
		return NewInvalidStateError("location %s is archived", id)
	}
	return nil
}

func (o *Organization) findLocation(id LocationID) (*Location, error) {
	for _, l := range o.locations {
		if l.id == id {
			return l, nil
		}
	}
	return nil, NewNotFoundError("location", id)
}

func (o *Organization) findEmployee(id EmployeeID) (*Employee, error) {
	for _, e := range o.employees {
		if e.id == id {
			return e, nil
		}
	}
	return nil, NewNotFoundError("employee", id)
}

func (o *Organization) touch() {
	now := o.rt.now()
	o.updatedAt = &now
}

// OrganizationState is the plain data form of the whole aggregate, used for
// storage, caching and export.
type OrganizationState struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Subscription SubscriptionState  `json:"subscription"`
	Status       OrganizationStatus `json:"status"`
	Version      int                `json:"version"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    *time.Time         `json:"updatedAt"`
	Locations    []LocationState    `json:"locations"`
	Employees    []EmployeeState    `json:"employees"`
}

// State returns a deep copy of the aggregate as plain data.
func (o *Organization) State() OrganizationState {
	state := OrganizationState{
		ID:           o.id.UUID(),
		Name:         o.name,
		Subscription: o.subscription.State(),
		Status:       o.status,
		Version:      o.version,
		CreatedAt:    o.createdAt,
		UpdatedAt:    cloneTime(o.updatedAt),
		Locations:    make([]LocationState, len(o.locations)),
		Employees:    make([]EmployeeState, len(o.employees)),
	}
	for i, l := range o.locations {
		state.Locations[i] = l.State()
	}
	for i, e := range o.employees {
		state.Employees[i] = e.State()
	}
	return state
}

// Restore rebuilds an aggregate from stored state.
func Restore(state OrganizationState, opts ...Option) (*Organization, error) {
	if state.ID == uuid.Nil {
		return nil, NewValidationError("id", "organization id is required")
	}
	if !state.Status.valid() {
		return nil, NewValidationError("status", "unknown organization status")
	}
	subscription, err := RestoreSubscription(state.Subscription)
	if err != nil {
		return nil, err
	}

	org := &Organization{
		id:           OrganizationIDFrom(state.ID),
		name:         state.Name,
		subscription: subscription,
		status:       state.Status,
		createdAt:    state.CreatedAt,
		updatedAt:    cloneTime(state.UpdatedAt),
		version:      state.Version,
		rt:           newRuntime(opts),
	}

	for _, ls := range state.Locations {
		l, err := restoreLocation(ls)
		if err != nil {
			return nil, fmt.Errorf("location %s: %w", ls.ID, err)
		}
		if !l.organizationID.Equal(org.id) {
			return nil, NewValidationError("locations", fmt.Sprintf("location %s belongs to another organization", ls.ID))
		}
		if _, err := org.findLocation(l.id); err == nil {
			return nil, NewValidationError("locations", fmt.Sprintf("duplicate location %s", ls.ID))
		}
		org.locations = append(org.locations, l)
	}

	for _, es := range state.Employees {
		e, err := restoreEmployee(es)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", es.ID, err)
		}
		if !e.organizationID.Equal(org.id) {
			return nil, NewValidationError("employees", fmt.Sprintf("employee %s belongs to another organization", es.ID))
		}
		if _, err := org.findEmployee(e.id); err == nil {
			return nil, NewValidationError("employees", fmt.Sprintf("duplicate employee %s", es.ID))
		}
		org.employees = append(org.employees, e)
	}

	return org, nil
}
