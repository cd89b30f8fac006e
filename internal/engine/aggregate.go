package engine

// AggregationState backs the aggregation operator family: a per-group,
// insertion-ordered time series supporting sum/count/avg over a trailing
// window. Append-only except for Prune.
//
// Not safe for concurrent use on its own - the owning Evaluator guards
// every access with its own lock. External code never mutates a state
// directly.
type AggregationState struct {
	clock  Clock
	groups map[string][]sample
}

type sample struct {
	ts    int64 // epoch seconds
	value float64
}

// DefaultMaxAge is the default Prune retention horizon: one week.
const DefaultMaxAge int64 = 604800

// NewAggregationState creates an empty state reading time from clock.
func NewAggregationState(clock Clock) *AggregationState {
	return &AggregationState{
		clock:  clock,
		groups: make(map[string][]sample),
	}
}

// Append records a value for the group at the clock's current time.
func (s *AggregationState) Append(groupKey string, value float64) {
	s.groups[groupKey] = append(s.groups[groupKey], sample{
		ts:    s.clock.Now().Unix(),
		value: value,
	})
}

// Window returns the group's values whose timestamp is at least
// now - windowSeconds, in insertion order. O(n) over the group's
// entries; acceptable because the halt checker caps windows.
func (s *AggregationState) Window(groupKey string, windowSeconds int64) []float64 {
	entries, ok := s.groups[groupKey]
	if !ok {
		return nil
	}

	cutoff := s.clock.Now().Unix() - windowSeconds
	var values []float64
	for _, e := range entries {
		if e.ts >= cutoff {
			values = append(values, e.value)
		}
	}
	return values
}

// Sum returns the sum of values in the window. Empty window sums to 0.
func (s *AggregationState) Sum(groupKey string, windowSeconds int64) float64 {
	var total float64
	for _, v := range s.Window(groupKey, windowSeconds) {
		total += v
	}
	return total
}

// Count returns the number of values in the window.
func (s *AggregationState) Count(groupKey string, windowSeconds int64) int {
	return len(s.Window(groupKey, windowSeconds))
}

// Avg returns the mean of values in the window. The average of an empty
// window is 0.0 - not an error, not NaN.
func (s *AggregationState) Avg(groupKey string, windowSeconds int64) float64 {
	values := s.Window(groupKey, windowSeconds)
	if len(values) == 0 {
		return 0.0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// Prune deletes entries older than maxAgeSeconds from every group.
// Never called automatically - the owning process schedules it to bound
// memory. DefaultMaxAge is the conventional horizon.
func (s *AggregationState) Prune(maxAgeSeconds int64) {
	cutoff := s.clock.Now().Unix() - maxAgeSeconds
	for key, entries := range s.groups {
		kept := entries[:0]
		for _, e := range entries {
			if e.ts >= cutoff {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(s.groups, key)
		} else {
			s.groups[key] = kept
		}
	}
}

// GroupLen returns the number of entries held for a group, regardless
// of window. Used for introspection and tests.
func (s *AggregationState) GroupLen(groupKey string) int {
	return len(s.groups[groupKey])
}
