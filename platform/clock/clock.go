// Package clock provides a time source abstraction so temporal business rules
// can be tested against a frozen "now". This is part of the platform layer and
// contains no business logic.
package clock

import "time"

// Clock returns the current time. Both the domain classification rules and the
// repository query cutoffs consume the same Clock instance so they can never
// disagree on what "now" means.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by the wall clock.
func System() Clock { return systemClock{} }

// Fixed is a Clock frozen at a settable instant, for tests.
type Fixed struct {
	Instant time.Time
}

// Now returns the frozen instant.
func (f *Fixed) Now() time.Time { return f.Instant }

// Advance moves the frozen instant forward by d.
func (f *Fixed) Advance(d time.Duration) { f.Instant = f.Instant.Add(d) }

// NewFixed creates a Fixed clock at the given instant.
func NewFixed(t time.Time) *Fixed { return &Fixed{Instant: t} }
