package engine

import "github.com/verist/cdl/internal/constraint"

// Result is the verdict of one evaluation. Strict pass/fail, never a
// probability. Produced fresh per call and not retained by the engine.
type Result struct {
	Passed       bool   `json:"passed"`
	ConstraintID string `json:"constraint_id"`
	Message      string `json:"message,omitempty"`
	Timestamp    int64  `json:"timestamp"` // epoch milliseconds
	Fingerprint  string `json:"fingerprint"`
}

// NewResult stamps a verdict with the evaluation time and its
// fingerprint. The fingerprint hashes (passed, constraint_id,
// timestamp), so it is time-dependent. Exposed for callers
// that combine verdicts outside the evaluator, e.g. the all-of/any-of
// convenience wrappers.
func NewResult(clock Clock, passed bool, constraintID, message string) Result {
	return newResult(clock, passed, constraintID, message)
}

func newResult(clock Clock, passed bool, constraintID, message string) Result {
	ts := clock.Now().UnixMilli()
	return Result{
		Passed:       passed,
		ConstraintID: constraintID,
		Message:      message,
		Timestamp:    ts,
		Fingerprint:  constraint.Fingerprint(passed, constraintID, ts),
	}
}
