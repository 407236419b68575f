package domain

import "time"

const (
	TrialPeriod    = 14 * 24 * time.Hour
	TrialSeatLimit = 50
)

// Subscription is the billing state gating organization lifecycle actions.
// It is replaced wholesale on the aggregate, never modified in place.
type Subscription struct {
	plan           SubscriptionPlan
	status         SubscriptionStatus
	expiresAt      time.Time
	totalSeats     int
	availableSeats int
}

// NewTrialSubscription starts a platinum trial with the admins already occupying seats.
func NewTrialSubscription(adminCount int, now time.Time) Subscription {
	return Subscription{
		plan:           SubscriptionPlanPlatinum,
		status:         SubscriptionStatusTrial,
		expiresAt:      now.Add(TrialPeriod),
		totalSeats:     TrialSeatLimit,
		availableSeats: TrialSeatLimit - adminCount,
	}
}

// NewCanceledSubscription copies the given terms and forces the canceled status.
func NewCanceledSubscription(plan SubscriptionPlan, expiresAt time.Time, totalSeats, availableSeats int) Subscription {
	return Subscription{
		plan:           plan,
		status:         SubscriptionStatusCanceled,
		expiresAt:      expiresAt,
		totalSeats:     totalSeats,
		availableSeats: availableSeats,
	}
}

// NewExpiredSubscription copies the given terms and forces the expired status.
func NewExpiredSubscription(plan SubscriptionPlan, expiresAt time.Time, totalSeats, availableSeats int) Subscription {
	return Subscription{
		plan:           plan,
		status:         SubscriptionStatusExpired,
		expiresAt:      expiresAt,
		totalSeats:     totalSeats,
		availableSeats: availableSeats,
	}
}

// NewActiveSubscription validates and builds a paid subscription.
func NewActiveSubscription(plan SubscriptionPlan, expiresAt time.Time, totalSeats, availableSeats int) (Subscription, error) {
	return newSubscription(plan, SubscriptionStatusActive, expiresAt, totalSeats, availableSeats)
}

func newSubscription(plan SubscriptionPlan, status SubscriptionStatus, expiresAt time.Time, totalSeats, availableSeats int) (Subscription, error) {
	if !plan.valid() {
		return Subscription{}, NewValidationError("plan", "unknown subscription plan")
	}
	if !status.valid() {
		return Subscription{}, NewValidationError("status", "unknown subscription status")
	}
	if totalSeats < 0 || availableSeats < 0 {
		return Subscription{}, NewValidationError("seats", "seat counts cannot be negative")
	}
	if availableSeats > totalSeats {
		return Subscription{}, NewValidationError("availableSeats", "available seats cannot exceed total seats")
	}
	return Subscription{
		plan:           plan,
		status:         status,
		expiresAt:      expiresAt.UTC(),
		totalSeats:     totalSeats,
		availableSeats: availableSeats,
	}, nil
}

func (s Subscription) Plan() SubscriptionPlan     { return s.plan }
func (s Subscription) Status() SubscriptionStatus { return s.status }
func (s Subscription) ExpiresAt() time.Time       { return s.expiresAt }
func (s Subscription) TotalSeats() int            { return s.totalSeats }
func (s Subscription) AvailableSeats() int        { return s.availableSeats }

// UsedSeats is the number of seats held by non-archived employees.
func (s Subscription) UsedSeats() int { return s.totalSeats - s.availableSeats }

// IsTerminal reports whether the status is a sink (canceled or expired).
func (s Subscription) IsTerminal() bool {
	return s.status == SubscriptionStatusCanceled || s.status == SubscriptionStatusExpired
}

func (s Subscription) IsExpired() bool { return s.status == SubscriptionStatusExpired }

// Lapsed reports whether the subscription has passed its expiry but is not yet marked expired.
func (s Subscription) Lapsed(now time.Time) bool {
	return !s.IsExpired() && !now.Before(s.expiresAt)
}

func (s Subscription) Equal(other Subscription) bool {
	return s.plan == other.plan &&
		s.status == other.status &&
		s.expiresAt.Equal(other.expiresAt) &&
		s.totalSeats == other.totalSeats &&
		s.availableSeats == other.availableSeats
}

func (s Subscription) withAvailableSeats(n int) Subscription {
	s.availableSeats = n
	return s
}

// SubscriptionState is the plain data form of a Subscription.
type SubscriptionState struct {
	Plan           SubscriptionPlan   `json:"plan"`
	Status         SubscriptionStatus `json:"status"`
	ExpiresAt      time.Time          `json:"expiresAt"`
	TotalSeats     int                `json:"totalSeats"`
	AvailableSeats int                `json:"availableSeats"`
}

func (s Subscription) State() SubscriptionState {
	return SubscriptionState{
		Plan:           s.plan,
		Status:         s.status,
		ExpiresAt:      s.expiresAt,
		TotalSeats:     s.totalSeats,
		AvailableSeats: s.availableSeats,
	}
}

// RestoreSubscription rebuilds a Subscription from stored state.
func RestoreSubscription(state SubscriptionState) (Subscription, error) {
	return newSubscription(state.Plan, state.Status, state.ExpiresAt, state.TotalSeats, state.AvailableSeats)
}
