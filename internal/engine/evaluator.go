package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/verist/cdl/internal/constraint"
)

// Evaluator walks a validated constraint tree against a record and
// produces a Result. It owns its AggregationState exclusively; no
// external entity mutates that state directly.
//
// Thread-safety: Evaluate and Prune serialize on an internal mutex, so
// a single Evaluator may be shared by concurrent callers. The
// append-then-read sequence inside one aggregation atomic is therefore
// atomic with respect to other evaluations touching the same group -
// windowed sums cannot double-count or race. Callers wanting isolated
// aggregation state give each caller its own Evaluator instead.
//
// The engine performs no I/O and has no cancellation concept; callers
// enforce wall-clock budgets externally.
type Evaluator struct {
	mu    sync.Mutex
	clock Clock
	state *AggregationState
	evals int64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock injects the wall clock used for windowed aggregation,
// temporal operators, and result timestamps. Defaults to SystemClock.
func WithClock(clock Clock) Option {
	return func(e *Evaluator) {
		e.clock = clock
	}
}

// New creates an Evaluator with fresh aggregation state.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{clock: SystemClock()}
	for _, opt := range opts {
		opt(e)
	}
	e.state = NewAggregationState(e.clock)
	return e
}

// Evaluate walks the constraint tree against the record. Every path
// returns a Result - runtime problems become failing verdicts with a
// diagnostic message. The only observable side effect is the mutation
// of aggregation state by aggregation-family atomics.
func (e *Evaluator) Evaluate(c constraint.Constraint, record constraint.Map) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eval(c, record)
}

// Prune drops aggregation entries older than maxAgeSeconds. Scheduling
// is the owning process's job; evaluation never prunes.
func (e *Evaluator) Prune(maxAgeSeconds int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Prune(maxAgeSeconds)
}

// EvaluationCount returns how many constraint nodes this evaluator has
// visited, across all Evaluate calls.
func (e *Evaluator) EvaluationCount() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evals
}

func (e *Evaluator) eval(c constraint.Constraint, record constraint.Map) Result {
	e.evals++

	switch cc := c.(type) {
	case *constraint.Atomic:
		return e.evalAtomic(cc, record)
	case *constraint.Conditional:
		return e.evalConditional(cc, record)
	default:
		return e.evalComposite(c.(*constraint.Composite), record)
	}
}

func (e *Evaluator) evalAtomic(c *constraint.Atomic, record constraint.Map) Result {
	fieldValue := resolvePath(record, c.Field)

	switch {
	case c.Operator.IsTemporal():
		return e.evalTemporal(c, record, fieldValue)
	case c.Operator.IsAggregation():
		return e.evalAggregation(c, record, fieldValue)
	}

	passed, err := compare(c.Operator, fieldValue, c.Value)
	if err != nil {
		return newResult(e.clock, false, c.ID(), fmt.Sprintf("evaluation error: %v", err))
	}

	message := ""
	if !passed {
		message = c.Message
	}
	return newResult(e.clock, passed, c.ID(), message)
}

func (e *Evaluator) evalAggregation(c *constraint.Atomic, record constraint.Map, fieldValue constraint.Value) Result {
	// The halt checker rejects unbounded aggregations at parse time;
	// this guard covers trees constructed directly from literals.
	if c.Window == "" {
		return newResult(e.clock, false, c.ID(), "window required for aggregation")
	}
	windowSeconds, err := constraint.ParseDuration(c.Window)
	if err != nil {
		return newResult(e.clock, false, c.ID(), err.Error())
	}

	groupKey := e.groupKey(c, record)

	// Observe-and-decide: record the current value before computing the
	// aggregate, so this very record counts against the window.
	if v, ok := coerceFloat(fieldValue); ok {
		e.state.Append(groupKey, v)
	}

	var agg float64
	switch c.Operator.AggFunc() {
	case "sum":
		agg = e.state.Sum(groupKey, windowSeconds)
	case "count":
		agg = float64(e.state.Count(groupKey, windowSeconds))
	case "avg":
		agg = e.state.Avg(groupKey, windowSeconds)
	}

	limit, ok := asFloat(c.Value)
	if !ok {
		return newResult(e.clock, false, c.ID(),
			fmt.Sprintf("aggregation limit must be numeric, got %s", typeName(c.Value)))
	}

	var passed bool
	switch c.Operator.AggComparator() {
	case "lt":
		passed = agg < limit
	case "le":
		passed = agg <= limit
	case "gt":
		passed = agg > limit
	case "ge":
		passed = agg >= limit
	}

	message := ""
	if !passed {
		message = fmt.Sprintf("%s(%s) = %s, limit = %s",
			c.Operator, c.Field, formatNumber(agg), formatNumber(limit))
	}
	return newResult(e.clock, passed, c.ID(), message)
}

// groupKey resolves the aggregation partition key. Unset group_by, a
// missing field, or a falsy value all fall through to "default".
// Non-string group values use the canonical encoding, which is
// deterministic across processes.
func (e *Evaluator) groupKey(c *constraint.Atomic, record constraint.Map) string {
	if c.GroupBy == "" {
		return "default"
	}
	gv := resolvePath(record, c.GroupBy)
	if isFalsy(gv) {
		return "default"
	}
	if s, ok := gv.(constraint.String); ok {
		return string(s)
	}
	return string(constraint.MustCanonical(gv))
}

func (e *Evaluator) evalConditional(c *constraint.Conditional, record constraint.Map) Result {
	condition := e.eval(c.Condition, record)

	if condition.Passed {
		return e.eval(c.Then, record)
	}
	if c.Else != nil {
		return e.eval(c.Else, record)
	}
	// No else clause and a false condition: vacuous truth.
	return newResult(e.clock, true, c.ID(), "")
}

func (e *Evaluator) evalComposite(c *constraint.Composite, record constraint.Map) Result {
	// Every child is evaluated - no short-circuit - so side effects
	// (aggregation appends) are applied consistently regardless of
	// sibling outcomes.
	results := make([]Result, len(c.Children))
	for i, child := range c.Children {
		results[i] = e.eval(child, record)
	}

	var passed bool
	var message string
	switch c.Logic {
	case constraint.LogicAnd:
		passed = true
		var failing []string
		for _, r := range results {
			if !r.Passed {
				passed = false
				if r.Message != "" {
					failing = append(failing, r.Message)
				}
			}
		}
		if !passed {
			message = strings.Join(failing, "; ")
		}
	case constraint.LogicOr:
		for _, r := range results {
			if r.Passed {
				passed = true
				break
			}
		}
		if !passed {
			message = "All constraints failed"
		}
	default: // LogicNot: passes iff zero children pass (none-of)
		passed = true
		for _, r := range results {
			if r.Passed {
				passed = false
				break
			}
		}
		if !passed {
			message = "NOT condition not satisfied"
		}
	}

	return newResult(e.clock, passed, c.ID(), message)
}

// resolvePath extracts a value by dot-path traversal. A missing path
// resolves to nil, which operators treat like null.
func resolvePath(record constraint.Map, path string) constraint.Value {
	var current constraint.Value = record
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(constraint.Map)
		if !ok {
			return nil
		}
		next, present := m[part]
		if !present {
			return nil
		}
		current = next
	}
	return current
}
