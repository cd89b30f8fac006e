package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verist/cdl/internal/constraint"
)

func temporalConstraint(op constraint.Operator, value constraint.Value, reference string) *constraint.Atomic {
	return &constraint.Atomic{
		Domain:    constraint.DomainTemporal,
		Field:     "created_at",
		Operator:  op,
		Value:     value,
		Reference: reference,
		Message:   "outside the allowed time",
	}
}

func TestEvalTemporal_WithinCurrentTime(t *testing.T) {
	e, _ := newTestEvaluator(1700000000)
	c := temporalConstraint(constraint.OpWithin, constraint.String("1h"), "")

	// 30 minutes old: inside the hour.
	res := e.Evaluate(c, record(map[string]any{"created_at": 1700000000 - 1800}))
	assert.True(t, res.Passed)

	// Two hours old: outside.
	res = e.Evaluate(c, record(map[string]any{"created_at": 1700000000 - 7200}))
	assert.False(t, res.Passed)
	assert.Equal(t, "outside the allowed time", res.Message)

	// within is symmetric: a timestamp 30 minutes in the future also
	// counts.
	res = e.Evaluate(c, record(map[string]any{"created_at": 1700000000 + 1800}))
	assert.True(t, res.Passed)
}

func TestEvalTemporal_WithinReferenceField(t *testing.T) {
	e, _ := newTestEvaluator(1700000000)
	c := temporalConstraint(constraint.OpWithin, constraint.String("10m"), "submitted_at")

	res := e.Evaluate(c, record(map[string]any{
		"created_at":   1000,
		"submitted_at": 1500,
	}))
	assert.True(t, res.Passed)

	res = e.Evaluate(c, record(map[string]any{
		"created_at":   1000,
		"submitted_at": 2000,
	}))
	assert.False(t, res.Passed)
}

func TestEvalTemporal_AfterBefore(t *testing.T) {
	e, _ := newTestEvaluator(1700000000)

	after := temporalConstraint(constraint.OpAfter, constraint.Null{}, "deadline")
	res := e.Evaluate(after, record(map[string]any{"created_at": 200, "deadline": 100}))
	assert.True(t, res.Passed)
	res = e.Evaluate(after, record(map[string]any{"created_at": 100, "deadline": 100}))
	assert.False(t, res.Passed)

	before := temporalConstraint(constraint.OpBefore, constraint.Null{}, "deadline")
	res = e.Evaluate(before, record(map[string]any{"created_at": 50, "deadline": 100}))
	assert.True(t, res.Passed)
	res = e.Evaluate(before, record(map[string]any{"created_at": 150, "deadline": 100}))
	assert.False(t, res.Passed)
}

func TestEvalTemporal_BeforeCurrentTime(t *testing.T) {
	e, _ := newTestEvaluator(1700000000)
	c := temporalConstraint(constraint.OpBefore, constraint.Null{}, "")

	res := e.Evaluate(c, record(map[string]any{"created_at": 1699999999}))
	assert.True(t, res.Passed)

	res = e.Evaluate(c, record(map[string]any{"created_at": 1700000001}))
	assert.False(t, res.Passed)
}

func TestEvalTemporal_StringTimestampsCoerce(t *testing.T) {
	e, _ := newTestEvaluator(1700000000)
	c := temporalConstraint(constraint.OpAfter, constraint.Null{}, "deadline")

	res := e.Evaluate(c, record(map[string]any{
		"created_at": "200.5",
		"deadline":   "100",
	}))
	assert.True(t, res.Passed)
}

func TestEvalTemporal_Diagnostics(t *testing.T) {
	e, _ := newTestEvaluator(1700000000)

	testCases := []struct {
		name    string
		c       *constraint.Atomic
		rec     constraint.Map
		wantMsg string
	}{
		{
			"missing field",
			temporalConstraint(constraint.OpWithin, constraint.String("1h"), ""),
			record(map[string]any{}),
			"field not found",
		},
		{
			"missing reference",
			temporalConstraint(constraint.OpWithin, constraint.String("1h"), "gone"),
			record(map[string]any{"created_at": 1}),
			"reference field not found",
		},
		{
			"non-numeric field",
			temporalConstraint(constraint.OpAfter, constraint.Null{}, ""),
			record(map[string]any{"created_at": "yesterday"}),
			"cannot interpret",
		},
		{
			"within non-string value",
			temporalConstraint(constraint.OpWithin, constraint.Int(3600), ""),
			record(map[string]any{"created_at": 1700000000}),
			"duration string",
		},
		{
			"within malformed duration",
			temporalConstraint(constraint.OpWithin, constraint.String("eventually"), ""),
			record(map[string]any{"created_at": 1700000000}),
			"invalid duration format",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := e.Evaluate(tc.c, tc.rec)
			assert.False(t, res.Passed)
			assert.Contains(t, res.Message, tc.wantMsg)
		})
	}
}
