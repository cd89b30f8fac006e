// Package cdl is the public surface of the constraint engine: thin
// convenience wrappers over the parser and evaluator with no state of
// their own. Each call builds a fresh evaluator, so aggregation
// operators see only the records of that call; collaborators that need
// windowed state across calls hold an Evaluator of their own.
package cdl

import (
	"strings"

	"github.com/verist/cdl/internal/constraint"
	"github.com/verist/cdl/internal/engine"
	"github.com/verist/cdl/internal/parser"
)

// Aliases so collaborators outside this module can name the engine's
// types without reaching into internal packages.
type (
	Constraint = constraint.Constraint
	Atomic     = constraint.Atomic
	Composite  = constraint.Composite
	Result     = engine.Result
	Evaluator  = engine.Evaluator
	Record     = constraint.Map
)

// Parse builds and halt-checks a constraint from an untyped definition.
func Parse(def map[string]any) (Constraint, error) {
	return parser.Parse(def)
}

// ParseJSON builds and halt-checks a constraint from JSON bytes.
func ParseJSON(data []byte) (Constraint, error) {
	return parser.ParseJSON(data)
}

// NewEvaluator creates a stateful evaluator for callers that want
// aggregation windows to span multiple records.
func NewEvaluator(opts ...engine.Option) *Evaluator {
	return engine.New(opts...)
}

// Verify parses a definition and evaluates it against a record in one
// call.
func Verify(def map[string]any, record map[string]any) (Result, error) {
	c, err := parser.Parse(def)
	if err != nil {
		return Result{}, err
	}
	return VerifyConstraint(c, record)
}

// VerifyConstraint evaluates an already-built constraint against a
// record with a fresh evaluator.
func VerifyConstraint(c Constraint, record map[string]any) (Result, error) {
	rec, err := toRecord(record)
	if err != nil {
		return Result{}, err
	}
	return engine.New().Evaluate(c, rec), nil
}

// VerifyAll verifies each definition independently and returns every
// verdict.
func VerifyAll(defs []map[string]any, record map[string]any) ([]Result, error) {
	results := make([]Result, len(defs))
	for i, def := range defs {
		r, err := Verify(def, record)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

// VerifyAnd passes iff every definition passes. The combined verdict's
// id concatenates a prefix of each member id; its message joins the
// failing members' messages.
func VerifyAnd(defs []map[string]any, record map[string]any) (Result, error) {
	results, err := VerifyAll(defs, record)
	if err != nil {
		return Result{}, err
	}

	passed := true
	var failing []string
	for _, r := range results {
		if !r.Passed {
			passed = false
			if r.Message != "" {
				failing = append(failing, r.Message)
			}
		}
	}
	message := ""
	if !passed {
		message = strings.Join(failing, "; ")
	}
	return engine.NewResult(engine.SystemClock(), passed, combinedID("AND", results), message), nil
}

// VerifyOr passes iff at least one definition passes.
func VerifyOr(defs []map[string]any, record map[string]any) (Result, error) {
	results, err := VerifyAll(defs, record)
	if err != nil {
		return Result{}, err
	}

	passed := false
	for _, r := range results {
		if r.Passed {
			passed = true
			break
		}
	}
	message := ""
	if !passed {
		message = "All constraints failed"
	}
	return engine.NewResult(engine.SystemClock(), passed, combinedID("OR", results), message), nil
}

func combinedID(prefix string, results []Result) string {
	parts := make([]string, 0, len(results)+1)
	parts = append(parts, prefix)
	for _, r := range results {
		id := r.ConstraintID
		if len(id) > 4 {
			id = id[:4]
		}
		parts = append(parts, id)
	}
	return strings.Join(parts, "_")
}

func toRecord(record map[string]any) (constraint.Map, error) {
	v, err := constraint.FromAny(record)
	if err != nil {
		return nil, err
	}
	return v.(constraint.Map), nil
}
