package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Location is a site operated by an organization. It is mutated only through
// its owning Organization.
type Location struct {
	id             LocationID
	organizationID OrganizationID
	name           string
	openingHours   OpeningHours
	address        *Address
	status         LocationStatus
	createdAt      time.Time
	updatedAt      *time.Time
}

func newLocation(id LocationID, organizationID OrganizationID, name string, hours OpeningHours, address *Address, now time.Time) (*Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "location name is required")
	}
	return &Location{
		id:             id,
		organizationID: organizationID,
		name:           name,
		openingHours:   hours,
		address:        cloneAddress(address),
		status:         LocationStatusActive,
		createdAt:      now,
	}, nil
}

func newDefaultLocation(id LocationID, organizationID OrganizationID, organizationName string, now time.Time) *Location {
	return &Location{
		id:             id,
		organizationID: organizationID,
		name:           strings.TrimSpace(organizationName) + " HQ",
		openingHours:   DefaultOpeningHours(),
		status:         LocationStatusActive,
		createdAt:      now,
	}
}

func (l *Location) update(name string, hours OpeningHours, address *Address, now time.Time) error {
	if err := l.checkUpdate(name); err != nil {
		return err
	}
	l.name = strings.TrimSpace(name)
	l.openingHours = hours
	l.address = cloneAddress(address)
	l.touch(now)
	return nil
}

func (l *Location) checkUpdate(name string) error {
	if l.status == LocationStatusArchived {
		return NewInvalidStateError("location %s is archived", l.id)
	}
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name", "location name is required")
	}
	return nil
}

func (l *Location) activate(now time.Time) error {
	if err := l.checkActivate(); err != nil {
		return err
	}
	l.status = LocationStatusActive
	l.touch(now)
	return nil
}

func (l *Location) checkActivate() error {
	if l.status == LocationStatusActive {
		return NewInvalidStateError("location %s is already active", l.id)
	}
	return nil
}

func (l *Location) archive(now time.Time) error {
	if err := l.checkArchive(); err != nil {
		return err
	}
	l.status = LocationStatusArchived
	l.touch(now)
	return nil
}

func (l *Location) checkArchive() error {
	if l.status == LocationStatusArchived {
		return NewInvalidStateError("location %s is already archived", l.id)
	}
	return nil
}

func (l *Location) touch(now time.Time) {
	l.updatedAt = &now
}

func (l *Location) ID() LocationID                 { return l.id }
func (l *Location) OrganizationID() OrganizationID { return l.organizationID }
func (l *Location) Name() string                   { return l.name }
func (l *Location) OpeningHours() OpeningHours     { return l.openingHours }
func (l *Location) Status() LocationStatus         { return l.status }
func (l *Location) CreatedAt() time.Time           { return l.createdAt }
func (l *Location) IsActive() bool                 { return l.status == LocationStatusActive }
func (l *Location) IsArchived() bool               { return l.status == LocationStatusArchived }

// Address returns the location address, if one is set.
func (l *Location) Address() (Address, bool) {
	if l.address == nil {
		return Address{}, false
	}
	return *l.address, true
}

// UpdatedAt returns the last modification time, if the location was ever modified.
func (l *Location) UpdatedAt() (time.Time, bool) {
	if l.updatedAt == nil {
		return time.Time{}, false
	}
	return *l.updatedAt, true
}

func (l *Location) clone() *Location {
	c := *l
	c.address = cloneAddress(l.address)
	c.updatedAt = cloneTime(l.updatedAt)
	return &c
}

// LocationState is the plain data form of a Location.
type LocationState struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organizationId"`
	Name           string            `json:"name"`
	OpeningHours   OpeningHoursState `json:"openingHours"`
	Address        *AddressState     `json:"address"`
	Status         LocationStatus    `json:"status"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      *time.Time        `json:"updatedAt"`
}

func (l *Location) State() LocationState {
	state := LocationState{
		ID:             l.id.UUID(),
		OrganizationID: l.organizationID.UUID(),
		Name:           l.name,
		OpeningHours:   l.openingHours.State(),
		Status:         l.status,
		CreatedAt:      l.createdAt,
		UpdatedAt:      cloneTime(l.updatedAt),
	}
	if l.address != nil {
		a := l.address.State()
		state.Address = &a
	}
	return state
}

func restoreLocation(state LocationState) (*Location, error) {
	if !state.Status.valid() {
		return nil, NewValidationError("status", "unknown location status")
	}
	hours, err := RestoreOpeningHours(state.OpeningHours)
	if err != nil {
		return nil, err
	}
	l := &Location{
		id:             LocationIDFrom(state.ID),
		organizationID: OrganizationIDFrom(state.OrganizationID),
		name:           state.Name,
		openingHours:   hours,
		status:         state.Status,
		createdAt:      state.CreatedAt,
		updatedAt:      cloneTime(state.UpdatedAt),
	}
	if state.Address != nil {
		a := RestoreAddress(*state.Address)
		l.address = &a
	}
	return l, nil
}

func cloneAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
