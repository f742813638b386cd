// Package clock abstracts wall-clock reads so timing logic can be tested
// without real waits.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time {
	return time.Now()
}

// Fake is a manually advanced clock. It is safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	current time.Time
}

// NewFake returns a fake clock initialized to a fixed UTC start time.
func NewFake() *Fake {
	return &Fake{current: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

// NewFakeAt returns a fake clock set to t.
func NewFakeAt(t time.Time) *Fake {
	return &Fake{current: t}
}

// Now returns the fake's current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.current
}

// Advance moves the clock forward by d and returns the new time.
func (f *Fake) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = f.current.Add(d)

	return f.current
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = t
}
