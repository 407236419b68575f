package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		hour    int
		minute  int
		want    string
		wantErr bool
	}{
		{name: "midnight", hour: 0, minute: 0, want: "00:00"},
		{name: "morning", hour: 9, minute: 5, want: "09:05"},
		{name: "last minute", hour: 23, minute: 59, want: "23:59"},
		{name: "hour too large", hour: 24, minute: 0, wantErr: true},
		{name: "negative minute", hour: 10, minute: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeOfDay(tt.hour, tt.minute)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.hour, got.Hour())
			assert.Equal(t, tt.minute, got.Minute())
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("17:30")
	require.NoError(t, err)
	assert.Equal(t, MustTimeOfDay(17, 30), got)

	got, err = ParseTimeOfDay("08:15:30")
	require.NoError(t, err)
	assert.Equal(t, 30, got.Second())
	assert.Equal(t, "08:15:30", got.String())

	_, err = ParseTimeOfDay("25:00")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewOpeningHoursRange(t *testing.T) {
	nine := MustTimeOfDay(9, 0)
	five := MustTimeOfDay(17, 0)

	tests := []struct {
		name    string
		from    TimeOfDay
		to      TimeOfDay
		enabled bool
		wantErr bool
	}{
		{name: "enabled ordered", from: nine, to: five, enabled: true},
		{name: "enabled equal", from: nine, to: nine, enabled: true, wantErr: true},
		{name: "enabled reversed", from: five, to: nine, enabled: true, wantErr: true},
		{name: "disabled equal", from: nine, to: nine, enabled: false},
		{name: "disabled reversed", from: five, to: nine, enabled: false},
		{name: "out of range", from: TimeOfDay(secondsPerDay), to: five, enabled: false, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewOpeningHoursRange(tt.from, tt.to, tt.enabled)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.from, r.From())
			assert.Equal(t, tt.to, r.To())
			assert.Equal(t, tt.enabled, r.IsEnabled())
		})
	}
}

func TestNewOpeningHours(t *testing.T) {
	weekly := DefaultOpeningHours().Weekly()
	require.Len(t, weekly, 7)

	hours, err := NewOpeningHours(weekly)
	require.NoError(t, err)
	assert.True(t, hours.Equal(DefaultOpeningHours()))

	delete(weekly, time.Wednesday)
	_, err = NewOpeningHours(weekly)
	assert.ErrorIs(t, err, ErrValidation)

	weekly[time.Weekday(9)] = hours.Day(time.Monday)
	_, err = NewOpeningHours(weekly)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDefaultOpeningHours(t *testing.T) {
	hours := DefaultOpeningHours()
	for day := time.Sunday; day <= time.Saturday; day++ {
		r := hours.Day(day)
		assert.True(t, r.IsEnabled(), day.String())
		assert.Equal(t, "09:00", r.From().String())
		assert.Equal(t, "17:00", r.To().String())
	}
}

func TestOpeningHoursStateRoundTrip(t *testing.T) {
	closed, err := NewOpeningHoursRange(MustTimeOfDay(0, 0), MustTimeOfDay(0, 0), false)
	require.NoError(t, err)
	weekly := DefaultOpeningHours().Weekly()
	weekly[time.Saturday] = closed
	hours, err := NewOpeningHours(weekly)
	require.NoError(t, err)

	state := hours.State()
	assert.Equal(t, OpeningHoursRangeState{From: "00:00", To: "00:00", IsEnabled: false}, state[time.Saturday])

	restored, err := RestoreOpeningHours(state)
	require.NoError(t, err)
	assert.True(t, restored.Equal(hours))

	state[time.Monday] = OpeningHoursRangeState{From: "18:00", To: "08:00", IsEnabled: true}
	_, err = RestoreOpeningHours(state)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddress(t *testing.T) {
	a := NewAddress("DE", "Berlin", "Unter den Linden 1", "10117")
	assert.Equal(t, "DE", a.Country())
	assert.Equal(t, "Berlin", a.City())
	assert.Equal(t, "Unter den Linden 1", a.Street())
	assert.Equal(t, "10117", a.PostalCode())
	assert.True(t, a.Equal(RestoreAddress(a.State())))
	assert.False(t, a.Equal(NewAddress("DE", "Berlin", "Unter den Linden 2", "10117")))
}

func TestNewTrialSubscription(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	s := NewTrialSubscription(4, now)
	assert.Equal(t, SubscriptionPlanPlatinum, s.Plan())
	assert.Equal(t, SubscriptionStatusTrial, s.Status())
	assert.Equal(t, now.AddDate(0, 0, 14), s.ExpiresAt())
	assert.Equal(t, 50, s.TotalSeats())
	assert.Equal(t, 46, s.AvailableSeats())
	assert.Equal(t, 4, s.UsedSeats())
	assert.False(t, s.IsTerminal())
	assert.False(t, s.Lapsed(now))
	assert.True(t, s.Lapsed(now.Add(TrialPeriod)))
}

func TestSubscriptionCopies(t *testing.T) {
	expiresAt := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	canceled := NewCanceledSubscription(SubscriptionPlanGold, expiresAt, 20, 5)
	assert.Equal(t, SubscriptionStatusCanceled, canceled.Status())
	assert.True(t, canceled.IsTerminal())
	assert.False(t, canceled.IsExpired())

	expired := NewExpiredSubscription(SubscriptionPlanGold, expiresAt, 20, 5)
	assert.Equal(t, SubscriptionStatusExpired, expired.Status())
	assert.True(t, expired.IsExpired())
	assert.False(t, expired.Lapsed(expiresAt.AddDate(1, 0, 0)))

	assert.False(t, canceled.Equal(expired))
	assert.Equal(t, canceled.ExpiresAt(), expired.ExpiresAt())
}

func TestNewActiveSubscription(t *testing.T) {
	expiresAt := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		plan      SubscriptionPlan
		total     int
		available int
		wantErr   bool
	}{
		{name: "valid", plan: SubscriptionPlanSilver, total: 10, available: 3},
		{name: "unknown plan", plan: SubscriptionPlan(1), total: 10, available: 3, wantErr: true},
		{name: "negative seats", plan: SubscriptionPlanGold, total: -1, available: 0, wantErr: true},
		{name: "available over total", plan: SubscriptionPlanGold, total: 5, available: 6, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewActiveSubscription(tt.plan, expiresAt, tt.total, tt.available)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, SubscriptionStatusActive, s.Status())
			assert.Equal(t, tt.available, s.AvailableSeats())

			restored, err := RestoreSubscription(s.State())
			require.NoError(t, err)
			assert.True(t, restored.Equal(s))
		})
	}
}

func TestIDs(t *testing.T) {
	raw := uuid.MustParse("0b6c4a9e-3f1f-4c55-8d0a-6f3a3c2f9a10")
	id := OrganizationIDFrom(raw)
	assert.Equal(t, raw, id.UUID())
	assert.Equal(t, raw.String(), id.String())
	assert.True(t, id.Equal(OrganizationIDFrom(raw)))
	assert.False(t, id.IsZero())
	assert.True(t, OrganizationID{}.IsZero())

	low := LocationIDFrom(uuid.UUID{0x01})
	high := LocationIDFrom(uuid.UUID{0x02})
	assert.Equal(t, -1, low.Compare(high))
	assert.Equal(t, 1, high.Compare(low))
	assert.Equal(t, 0, low.Compare(low))

	assert.False(t, NewEmployeeID().Equal(NewEmployeeID()))
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "archived", OrganizationStatusArchived.String())
	assert.Equal(t, "inactive", LocationStatusInactive.String())
	assert.Equal(t, "invited", EmployeeStatusInvited.String())
	assert.Equal(t, "manager", EmployeeRoleManager.String())
	assert.Equal(t, "silver", SubscriptionPlanSilver.String())
	assert.Equal(t, "expired", SubscriptionStatusExpired.String())
	assert.Equal(t, "unknown", SubscriptionPlan(1).String())
	assert.Equal(t, 2, int(SubscriptionPlanSilver))
	assert.Equal(t, 4, int(EmployeeStatusArchived))
}

func TestTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", NewValidationError("name", "required"))
	vErr, ok := IsValidationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "name: required", vErr.Error())
	assert.ErrorIs(t, wrapped, ErrValidation)
	assert.False(t, errors.Is(wrapped, ErrInvalidState))

	stateErr := NewInvalidStateError("organization %s is archived", "acme")
	_, ok = IsInvalidStateError(stateErr)
	assert.True(t, ok)
	assert.Equal(t, "organization acme is archived", stateErr.Error())

	id := NewLocationID()
	notFound := NewNotFoundError("location", id)
	nErr, ok := IsNotFoundError(notFound)
	require.True(t, ok)
	assert.Equal(t, id.String(), nErr.ID)
	assert.ErrorIs(t, notFound, ErrNotFound)

	_, ok = IsNotFoundError(stateErr)
	assert.False(t, ok)
}
