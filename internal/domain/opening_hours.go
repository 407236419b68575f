package domain

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time within a single day, at second precision.
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, NewValidationError("time", fmt.Sprintf("invalid time of day %02d:%02d", hour, minute))
	}
	return TimeOfDay(hour*3600 + minute*60), nil
}

// MustTimeOfDay is NewTimeOfDay for constant inputs.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
		}
	}
	return 0, NewValidationError("time", fmt.Sprintf("invalid time of day %q", s))
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	if t.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) valid() bool { return t >= 0 && t < secondsPerDay }

// OpeningHoursRange is the open interval for one weekday.
type OpeningHoursRange struct {
	from      TimeOfDay
	to        TimeOfDay
	isEnabled bool
}

// NewOpeningHoursRange requires from < to only when the range is enabled.
func NewOpeningHoursRange(from, to TimeOfDay, isEnabled bool) (OpeningHoursRange, error) {
	if !from.valid() || !to.valid() {
		return OpeningHoursRange{}, NewValidationError("openingHours", "time of day out of range")
	}
	if isEnabled && from >= to {
		return OpeningHoursRange{}, NewValidationError("openingHours", "from time must be earlier than to time when enabled")
	}
	return OpeningHoursRange{from: from, to: to, isEnabled: isEnabled}, nil
}

func (r OpeningHoursRange) From() TimeOfDay { return r.from }
func (r OpeningHoursRange) To() TimeOfDay   { return r.to }
func (r OpeningHoursRange) IsEnabled() bool { return r.isEnabled }

func (r OpeningHoursRange) Equal(other OpeningHoursRange) bool {
	return r.from == other.from && r.to == other.to && r.isEnabled == other.isEnabled
}

// OpeningHours is a total weekly schedule, indexed by time.Weekday.
type OpeningHours struct {
	weekly [7]OpeningHoursRange
}

// NewOpeningHours requires exactly one range for each day of the week.
func NewOpeningHours(weekly map[time.Weekday]OpeningHoursRange) (OpeningHours, error) {
	if len(weekly) != 7 {
		return OpeningHours{}, NewValidationError("openingHours", "weekly schedule must contain all days of the week")
	}
	var hours OpeningHours
	for day := time.Sunday; day <= time.Saturday; day++ {
		r, ok := weekly[day]
		if !ok {
			return OpeningHours{}, NewValidationError("openingHours", fmt.Sprintf("weekly schedule is missing %s", day))
		}
		hours.weekly[day] = r
	}
	return hours, nil
}

// DefaultOpeningHours is every day 09:00-17:00.
func DefaultOpeningHours() OpeningHours {
	r := OpeningHoursRange{from: MustTimeOfDay(9, 0), to: MustTimeOfDay(17, 0), isEnabled: true}
	var hours OpeningHours
	for i := range hours.weekly {
		hours.weekly[i] = r
	}
	return hours
}

// Day returns the range for the given weekday.
func (h OpeningHours) Day(day time.Weekday) OpeningHoursRange {
	return h.weekly[day]
}

// Weekly returns a copy of the schedule keyed by weekday.
func (h OpeningHours) Weekly() map[time.Weekday]OpeningHoursRange {
	out := make(map[time.Weekday]OpeningHoursRange, len(h.weekly))
	for i, r := range h.weekly {
		out[time.Weekday(i)] = r
	}
	return out
}

func (h OpeningHours) Equal(other OpeningHours) bool {
	return h.weekly == other.weekly
}

// OpeningHoursRangeState is the plain data form of an OpeningHoursRange.
type OpeningHoursRangeState struct {
	From      string `json:"from"`
	To        string `json:"to"`
	IsEnabled bool   `json:"isEnabled"`
}

// OpeningHoursState keys ranges by weekday number (Sunday = 0).
type OpeningHoursState map[time.Weekday]OpeningHoursRangeState

func (h OpeningHours) State() OpeningHoursState {
	out := make(OpeningHoursState, len(h.weekly))
	for i, r := range h.weekly {
		out[time.Weekday(i)] = OpeningHoursRangeState{
			From:      r.from.String(),
			To:        r.to.String(),
			IsEnabled: r.isEnabled,
		}
	}
	return out
}

// RestoreOpeningHours parses and validates a stored schedule.
func RestoreOpeningHours(state OpeningHoursState) (OpeningHours, error) {
	weekly := make(map[time.Weekday]OpeningHoursRange, len(state))
	for day, rs := range state {
		from, err := ParseTimeOfDay(rs.From)
		if err != nil {
			return OpeningHours{}, err
		}
		to, err := ParseTimeOfDay(rs.To)
		if err != nil {
			return OpeningHours{}, err
		}
		r, err := NewOpeningHoursRange(from, to, rs.IsEnabled)
		if err != nil {
			return OpeningHours{}, err
		}
		weekly[day] = r
	}
	return NewOpeningHours(weekly)
}
