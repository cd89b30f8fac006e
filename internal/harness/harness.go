package harness

import (
	"fmt"
	"strings"
	"time"

	"github.com/verist/cdl/internal/constraint"
	"github.com/verist/cdl/internal/engine"
	"github.com/verist/cdl/internal/parser"
	"github.com/verist/cdl/internal/testutil"
)

// StepOutcome records one step's verdict and whether it matched the
// scenario's expectation.
type StepOutcome struct {
	Index   int    `json:"index"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`

	Expected string `json:"expected"`
	Matched  bool   `json:"matched"`
}

// RunResult is the outcome of executing a scenario.
type RunResult struct {
	ScenarioName string        `json:"scenario"`
	ConstraintID string        `json:"constraint_id"`
	Outcomes     []StepOutcome `json:"steps"`

	// Failures lists human-readable expectation mismatches. Empty for
	// a green scenario.
	Failures []string `json:"failures,omitempty"`
}

// OK reports whether every step matched its expectation.
func (r *RunResult) OK() bool {
	return len(r.Failures) == 0
}

// Run executes a scenario: parse and halt-check the constraint, then
// evaluate every step in order against one evaluator under a fake
// clock. A structural error in the constraint or a record aborts the
// run; expectation mismatches do not - they are collected in Failures.
func Run(s *Scenario) (*RunResult, error) {
	c, err := parser.Parse(s.Constraint)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: parse constraint: %w", s.Name, err)
	}

	startAt := s.StartAt
	if startAt == 0 {
		startAt = DefaultStartAt
	}
	clock := testutil.NewFakeClockAt(startAt)
	ev := engine.New(engine.WithClock(clock))

	result := &RunResult{
		ScenarioName: s.Name,
		ConstraintID: c.ID(),
		Outcomes:     make([]StepOutcome, 0, len(s.Steps)),
	}

	for i, step := range s.Steps {
		if step.Advance > 0 {
			clock.Advance(time.Duration(step.Advance) * time.Second)
		}

		rv, err := constraint.FromAny(step.Record)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: steps[%d].record: %w", s.Name, i, err)
		}
		record, ok := rv.(constraint.Map)
		if !ok {
			return nil, fmt.Errorf("scenario %s: steps[%d].record must be a mapping", s.Name, i)
		}

		verdict := ev.Evaluate(c, record)

		expectPass := strings.EqualFold(step.Expect, "pass")
		matched := verdict.Passed == expectPass
		if matched && step.MessageContains != "" {
			matched = strings.Contains(verdict.Message, step.MessageContains)
		}

		if !matched {
			if verdict.Passed != expectPass {
				result.Failures = append(result.Failures, fmt.Sprintf(
					"steps[%d]: expected %s, got passed=%t (message: %q)",
					i, strings.ToLower(step.Expect), verdict.Passed, verdict.Message))
			} else {
				result.Failures = append(result.Failures, fmt.Sprintf(
					"steps[%d]: message %q does not contain %q",
					i, verdict.Message, step.MessageContains))
			}
		}

		result.Outcomes = append(result.Outcomes, StepOutcome{
			Index:    i,
			Passed:   verdict.Passed,
			Message:  verdict.Message,
			Expected: strings.ToLower(step.Expect),
			Matched:  matched,
		})
	}

	return result, nil
}
