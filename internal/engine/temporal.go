package engine

import (
	"fmt"
	"math"

	"github.com/verist/cdl/internal/constraint"
)

// evalTemporal handles within/after/before. Field and reference are
// numeric timestamps in epoch seconds; numeric strings coerce. For
// within, the duration string rides in the constraint's value - not its
// window field, which belongs to the aggregation family.
func (e *Evaluator) evalTemporal(c *constraint.Atomic, record constraint.Map, fieldValue constraint.Value) Result {
	if isNil(fieldValue) {
		return newResult(e.clock, false, c.ID(), "field not found")
	}

	var refValue constraint.Value
	if c.Reference != "" {
		refValue = resolvePath(record, c.Reference)
		if isNil(refValue) {
			return newResult(e.clock, false, c.ID(), "reference field not found")
		}
	} else {
		// Unset reference means "current time".
		refValue = constraint.Float(float64(e.clock.Now().UnixNano()) / 1e9)
	}

	f, ok := coerceFloat(fieldValue)
	if !ok {
		return newResult(e.clock, false, c.ID(),
			fmt.Sprintf("cannot interpret %s as a timestamp", typeName(fieldValue)))
	}
	ref, ok := coerceFloat(refValue)
	if !ok {
		return newResult(e.clock, false, c.ID(),
			fmt.Sprintf("cannot interpret %s reference as a timestamp", typeName(refValue)))
	}

	var passed bool
	switch c.Operator {
	case constraint.OpWithin:
		s, ok := c.Value.(constraint.String)
		if !ok {
			return newResult(e.clock, false, c.ID(),
				fmt.Sprintf("within requires a duration string value, got %s", typeName(c.Value)))
		}
		window, err := constraint.ParseDuration(string(s))
		if err != nil {
			return newResult(e.clock, false, c.ID(), err.Error())
		}
		passed = math.Abs(f-ref) <= float64(window)
	case constraint.OpAfter:
		passed = f > ref
	default: // OpBefore
		passed = f < ref
	}

	message := ""
	if !passed {
		message = c.Message
	}
	return newResult(e.clock, passed, c.ID(), message)
}
