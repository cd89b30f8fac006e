// Package testutil provides deterministic fakes for engine tests.
package testutil

import (
	"sync"
	"time"
)

// FakeClock is a controllable wall clock for deterministic tests of
// windowed aggregation and temporal operators. It satisfies
// engine.Clock.
//
// Thread-safety: all methods are safe for concurrent use via an
// internal mutex.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock frozen at the given time.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

// NewFakeClockAt creates a clock frozen at an epoch-seconds instant.
// Convenient for tests that reason in raw timestamps.
func NewFakeClockAt(epochSeconds int64) *FakeClock {
	return &FakeClock{now: time.Unix(epochSeconds, 0).UTC()}
}

// Now returns the frozen time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative durations move it
// backward; tests use that to simulate clock skew.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to an absolute time.
func (c *FakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
