package domain

import (
	"time"

	"github.com/google/uuid"
)

// Clock is satisfied by clockwork.Clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// IDGenerator produces identities for new locations, employees and organizations.
type IDGenerator func() uuid.UUID

type runtime struct {
	clock Clock
	newID IDGenerator
}

func (r runtime) now() time.Time { return r.clock.Now().UTC() }

// Option configures the time and identity sources of an aggregate.
type Option func(*runtime)

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option {
	return func(r *runtime) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(gen IDGenerator) Option {
	return func(r *runtime) {
		if gen != nil {
			r.newID = gen
		}
	}
}

func newRuntime(opts []Option) runtime {
	r := runtime{clock: systemClock{}, newID: uuid.New}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
