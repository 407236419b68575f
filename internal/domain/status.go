package domain

// Numeric values are part of the stored and wire contract; do not reorder.

type OrganizationStatus int

const (
	OrganizationStatusInactive OrganizationStatus = iota + 1
	OrganizationStatusActive
	OrganizationStatusArchived
)

func (s OrganizationStatus) String() string {
	switch s {
	case OrganizationStatusInactive:
		return "inactive"
	case OrganizationStatusActive:
		return "active"
	case OrganizationStatusArchived:
		return "archived"
	default:
		return "unknown"
	}
}

func (s OrganizationStatus) valid() bool {
	return s >= OrganizationStatusInactive && s <= OrganizationStatusArchived
}

type LocationStatus int

const (
	LocationStatusInactive LocationStatus = iota + 1
	LocationStatusActive
	LocationStatusArchived
)

func (s LocationStatus) String() string {
	switch s {
	case LocationStatusInactive:
		return "inactive"
	case LocationStatusActive:
		return "active"
	case LocationStatusArchived:
		return "archived"
	default:
		return "unknown"
	}
}

func (s LocationStatus) valid() bool {
	return s >= LocationStatusInactive && s <= LocationStatusArchived
}

type EmployeeStatus int

const (
	EmployeeStatusInactive EmployeeStatus = iota + 1
	EmployeeStatusInvited
	EmployeeStatusActive
	EmployeeStatusArchived
)

func (s EmployeeStatus) String() string {
	switch s {
	case EmployeeStatusInactive:
		return "inactive"
	case EmployeeStatusInvited:
		return "invited"
	case EmployeeStatusActive:
		return "active"
	case EmployeeStatusArchived:
		return "archived"
	default:
		return "unknown"
	}
}

func (s EmployeeStatus) valid() bool {
	return s >= EmployeeStatusInactive && s <= EmployeeStatusArchived
}

type EmployeeRole int

const (
	EmployeeRoleAdmin EmployeeRole = iota + 1
	EmployeeRoleManager
	EmployeeRoleEmployee
)

func (r EmployeeRole) String() string {
	switch r {
	case EmployeeRoleAdmin:
		return "admin"
	case EmployeeRoleManager:
		return "manager"
	case EmployeeRoleEmployee:
		return "employee"
	default:
		return "unknown"
	}
}

func (r EmployeeRole) valid() bool {
	return r >= EmployeeRoleAdmin && r <= EmployeeRoleEmployee
}

// SubscriptionPlan values start at 2.
type SubscriptionPlan int

const (
	SubscriptionPlanSilver SubscriptionPlan = iota + 2
	SubscriptionPlanGold
	SubscriptionPlanPlatinum
)

func (p SubscriptionPlan) String() string {
	switch p {
	case SubscriptionPlanSilver:
		return "silver"
	case SubscriptionPlanGold:
		return "gold"
	case SubscriptionPlanPlatinum:
		return "platinum"
	default:
		return "unknown"
	}
}

func (p SubscriptionPlan) valid() bool {
	return p >= SubscriptionPlanSilver && p <= SubscriptionPlanPlatinum
}

type SubscriptionStatus int

const (
	SubscriptionStatusTrial SubscriptionStatus = iota + 1
	SubscriptionStatusActive
	SubscriptionStatusCanceled
	SubscriptionStatusExpired
)

func (s SubscriptionStatus) String() string {
	switch s {
	case SubscriptionStatusTrial:
		return "trial"
	case SubscriptionStatusActive:
		return "active"
	case SubscriptionStatusCanceled:
		return "canceled"
	case SubscriptionStatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

func (s SubscriptionStatus) valid() bool {
	return s >= SubscriptionStatusTrial && s <= SubscriptionStatusExpired
}
