package domain

import (
	"bytes"

	"github.com/google/uuid"
)

// OrganizationID is a value object for organization identity.
type OrganizationID struct{ value uuid.UUID }

// NewOrganizationID creates a random OrganizationID.
func NewOrganizationID() OrganizationID { return OrganizationID{value: uuid.New()} }

// OrganizationIDFrom wraps an existing uuid.
func OrganizationIDFrom(id uuid.UUID) OrganizationID { return OrganizationID{value: id} }

// UUID returns the wrapped uuid.
func (o OrganizationID) UUID() uuid.UUID { return o.value }

// String returns the canonical string form.
func (o OrganizationID) String() string { return o.value.String() }

func (o OrganizationID) Equal(other OrganizationID) bool { return o.value == other.value }

func (o OrganizationID) Compare(other OrganizationID) int {
	return bytes.Compare(o.value[:], other.value[:])
}

func (o OrganizationID) IsZero() bool { return o.value == uuid.Nil }

// LocationID is a value object for organization location identity.
type LocationID struct{ value uuid.UUID }

// NewLocationID creates a random LocationID.
func NewLocationID() LocationID { return LocationID{value: uuid.New()} }

// LocationIDFrom wraps an existing uuid.
func LocationIDFrom(id uuid.UUID) LocationID { return LocationID{value: id} }

// UUID returns the wrapped uuid.
func (l LocationID) UUID() uuid.UUID { return l.value }

// String returns the canonical string form.
func (l LocationID) String() string { return l.value.String() }

func (l LocationID) Equal(other LocationID) bool { return l.value == other.value }

func (l LocationID) Compare(other LocationID) int {
	return bytes.Compare(l.value[:], other.value[:])
}

func (l LocationID) IsZero() bool { return l.value == uuid.Nil }

// EmployeeID is a value object for organization employee identity.
type EmployeeID struct{ value uuid.UUID }

// NewEmployeeID creates a random EmployeeID.
func NewEmployeeID() EmployeeID { return EmployeeID{value: uuid.New()} }

// EmployeeIDFrom wraps an existing uuid.
func EmployeeIDFrom(id uuid.UUID) EmployeeID { return EmployeeID{value: id} }

// UUID returns the wrapped uuid.
func (e EmployeeID) UUID() uuid.UUID { return e.value }

// String returns the canonical string form.
func (e EmployeeID) String() string { return e.value.String() }

func (e EmployeeID) Equal(other EmployeeID) bool { return e.value == other.value }

func (e EmployeeID) Compare(other EmployeeID) int {
	return bytes.Compare(e.value[:], other.value[:])
}

func (e EmployeeID) IsZero() bool { return e.value == uuid.Nil }
