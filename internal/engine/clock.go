package engine

import "time"

// Clock abstracts wall-clock reads so windowed aggregation and temporal
// operators stay deterministic under test.
//
// Production code uses SystemClock; tests use testutil.FakeClock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}
