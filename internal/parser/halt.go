package parser

import (
	"fmt"

	"github.com/verist/cdl/internal/constraint"
)

// Static admissibility bounds. A tree inside all three is guaranteed to
// evaluate in bounded work; anything outside is rejected before it is
// ever evaluated.
const (
	// MaxDepth bounds recursion through conditional/composite nesting.
	MaxDepth = 100

	// MaxChildren bounds a single composite's fan-out.
	MaxChildren = 1000

	// MaxWindowSeconds bounds aggregation windows: one year.
	MaxWindowSeconds int64 = 31536000
)

// HaltCode categorizes halt-check violations.
type HaltCode string

const (
	CodeDepthExceeded        HaltCode = "DEPTH_EXCEEDED"
	CodeTooManyChildren      HaltCode = "TOO_MANY_CHILDREN"
	CodeUnboundedAggregation HaltCode = "UNBOUNDED_AGGREGATION"
)

// HaltViolation explains why a tree was rejected.
type HaltViolation struct {
	Code   HaltCode
	Reason string
}

// CheckHalts statically verifies that a constraint tree terminates in
// bounded work. Returns nil for admissible trees and a violation
// otherwise - never an error for a well-formed-but-rejected tree; the
// caller decides whether rejection is fatal.
//
// Atomic constraints halt in O(1)/O(field-size) except aggregation
// operators, which additionally need a parseable window of at most one
// year. Conditionals and composites halt iff every branch/child halts
// within the depth and fan-out bounds.
func CheckHalts(c constraint.Constraint) *HaltViolation {
	return checkHalts(c, 0)
}

func checkHalts(c constraint.Constraint, depth int) *HaltViolation {
	if depth > MaxDepth {
		return &HaltViolation{
			Code:   CodeDepthExceeded,
			Reason: fmt.Sprintf("constraint depth exceeds maximum (%d)", MaxDepth),
		}
	}

	switch cc := c.(type) {
	case *constraint.Atomic:
		return checkAtomic(cc)
	case *constraint.Conditional:
		for _, sub := range []constraint.Constraint{cc.Condition, cc.Then, cc.Else} {
			if sub == nil {
				continue
			}
			if v := checkHalts(sub, depth+1); v != nil {
				return v
			}
		}
		return nil
	default:
		comp := c.(*constraint.Composite)
		if len(comp.Children) > MaxChildren {
			return &HaltViolation{
				Code:   CodeTooManyChildren,
				Reason: fmt.Sprintf("composite exceeds maximum children (%d)", MaxChildren),
			}
		}
		for _, child := range comp.Children {
			if v := checkHalts(child, depth+1); v != nil {
				return v
			}
		}
		return nil
	}
}

func checkAtomic(c *constraint.Atomic) *HaltViolation {
	if !c.Operator.IsAggregation() {
		return nil
	}

	if c.Window == "" {
		return &HaltViolation{
			Code:   CodeUnboundedAggregation,
			Reason: "aggregation requires a bounded window",
		}
	}
	window, err := constraint.ParseDuration(c.Window)
	if err != nil {
		return &HaltViolation{Code: CodeUnboundedAggregation, Reason: err.Error()}
	}
	if window > MaxWindowSeconds {
		return &HaltViolation{
			Code:   CodeUnboundedAggregation,
			Reason: "aggregation window exceeds 1 year",
		}
	}
	return nil
}
