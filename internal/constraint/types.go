package constraint

import "strings"

// Domain tags a constraint's subject area. Informational only - it does
// not affect evaluation semantics, but it participates in the
// content-derived id so equal rules in different domains stay distinct.
type Domain string

const (
	DomainFinancial     Domain = "financial"
	DomainCommunication Domain = "communication"
	DomainHealth        Domain = "health"
	DomainEpistemic     Domain = "epistemic"
	DomainTemporal      Domain = "temporal"
	DomainIdentity      Domain = "identity"
	DomainCustom        Domain = "custom"
)

// Domains enumerates the closed set of valid domains.
var Domains = []Domain{
	DomainFinancial,
	DomainCommunication,
	DomainHealth,
	DomainEpistemic,
	DomainTemporal,
	DomainIdentity,
	DomainCustom,
}

// ParseDomain resolves a domain literal. The second return is false for
// anything outside the closed set.
func ParseDomain(s string) (Domain, bool) {
	d := Domain(s)
	for _, known := range Domains {
		if d == known {
			return d, true
		}
	}
	return "", false
}

// Operator names a constraint's test. Three families: comparison,
// temporal, and aggregation.
type Operator string

const (
	// Comparison family
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpLt       Operator = "lt"
	OpGt       Operator = "gt"
	OpLe       Operator = "le"
	OpGe       Operator = "ge"
	OpContains Operator = "contains"
	OpMatches  Operator = "matches"
	OpIn       Operator = "in"
	OpNotIn    Operator = "not_in"
	OpExists   Operator = "exists"
	OpEmpty    Operator = "empty"

	// Temporal family. For OpWithin the duration string is carried in
	// the constraint's value, not its window field.
	OpWithin Operator = "within"
	OpAfter  Operator = "after"
	OpBefore Operator = "before"

	// Aggregation family: {sum,count,avg} x {lt,le,gt,ge}, each
	// requiring a bounded window and an optional group_by field.
	OpSumLt   Operator = "sum_lt"
	OpSumLe   Operator = "sum_le"
	OpSumGt   Operator = "sum_gt"
	OpSumGe   Operator = "sum_ge"
	OpCountLt Operator = "count_lt"
	OpCountLe Operator = "count_le"
	OpCountGt Operator = "count_gt"
	OpCountGe Operator = "count_ge"
	OpAvgLt   Operator = "avg_lt"
	OpAvgLe   Operator = "avg_le"
	OpAvgGt   Operator = "avg_gt"
	OpAvgGe   Operator = "avg_ge"
)

// Operators enumerates the closed set of valid operators.
var Operators = []Operator{
	OpEq, OpNe, OpLt, OpGt, OpLe, OpGe,
	OpContains, OpMatches, OpIn, OpNotIn, OpExists, OpEmpty,
	OpWithin, OpAfter, OpBefore,
	OpSumLt, OpSumLe, OpSumGt, OpSumGe,
	OpCountLt, OpCountLe, OpCountGt, OpCountGe,
	OpAvgLt, OpAvgLe, OpAvgGt, OpAvgGe,
}

// ParseOperator resolves an operator literal. The second return is
// false for anything outside the closed set.
func ParseOperator(s string) (Operator, bool) {
	op := Operator(s)
	for _, known := range Operators {
		if op == known {
			return op, true
		}
	}
	return "", false
}

// IsTemporal reports whether the operator belongs to the temporal family.
func (op Operator) IsTemporal() bool {
	return op == OpWithin || op == OpAfter || op == OpBefore
}

// IsAggregation reports whether the operator belongs to the aggregation
// family.
func (op Operator) IsAggregation() bool {
	return strings.HasPrefix(string(op), "sum_") ||
		strings.HasPrefix(string(op), "count_") ||
		strings.HasPrefix(string(op), "avg_")
}

// AggFunc returns the aggregate function name ("sum", "count", "avg")
// for an aggregation operator, and "" otherwise.
func (op Operator) AggFunc() string {
	if !op.IsAggregation() {
		return ""
	}
	return string(op)[:strings.IndexByte(string(op), '_')]
}

// AggComparator returns the comparison suffix ("lt", "le", "gt", "ge")
// for an aggregation operator, and "" otherwise.
func (op Operator) AggComparator() string {
	if !op.IsAggregation() {
		return ""
	}
	return string(op)[strings.IndexByte(string(op), '_')+1:]
}

// Action declares what a collaborator should do with a failing verdict.
// The engine itself only reports it.
type Action string

const (
	ActionReject Action = "reject"
	ActionWarn   Action = "warn"
	ActionLog    Action = "log"
)

// ParseAction resolves an action literal.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionReject, ActionWarn, ActionLog:
		return a, true
	}
	return "", false
}

// Logic names a composite's combinator. LogicNot is n-ary "none-of":
// the composite passes iff zero children pass. It is NOT unary negation;
// callers depend on the n-ary reading.
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
	LogicNot Logic = "not"
)

// ParseLogic resolves a logic literal.
func ParseLogic(s string) (Logic, bool) {
	switch l := Logic(strings.ToLower(s)); l {
	case LogicAnd, LogicOr, LogicNot:
		return l, true
	}
	return "", false
}

// Constraint is a sealed interface over the three constraint variants.
// Only *Atomic, *Conditional, and *Composite implement it, so evaluator
// and halt-checker dispatch is exhaustive and compiler-checked.
//
// Constraint trees are acyclic by construction (built bottom-up from
// data literals) and finite (bounded by the halt checker before use).
type Constraint interface {
	// ID returns the constraint's content-derived identity. Stable for
	// identical definitions; used as a dedup/audit key, not a
	// uniqueness guarantee across semantically-equivalent values of
	// different types.
	ID() string

	constraint() // Sealed - only the three variants implement it
}

// Atomic is the smallest indivisible rule: one field, one operator, one
// value. Immutable once constructed.
type Atomic struct {
	Domain   Domain
	Field    string // dot-path into the record
	Operator Operator
	Value    Value
	Message  string // diagnostic attached to failing verdicts, optional
	Action   Action

	// Aggregation extensions
	Window  string // bounded window, e.g. "24h"; required by aggregation operators
	GroupBy string // field whose value partitions aggregation state

	// Temporal extension: reference field; current time when unset
	Reference string
}

func (*Atomic) constraint() {}

// ID implements Constraint. See AtomicID for the recipe.
func (a *Atomic) ID() string {
	return AtomicID(a.Domain, a.Field, a.Operator, a.Value)
}

// Conditional is if/then/else branching over sub-constraints. A nil
// Else means the conditional passes vacuously when Condition fails.
type Conditional struct {
	Condition Constraint
	Then      Constraint
	Else      Constraint // optional
}

func (*Conditional) constraint() {}

// ID implements Constraint.
func (c *Conditional) ID() string {
	return ConditionalID(c)
}

// Composite combines children under and/or/not. Children are always all
// evaluated; see Logic for the n-ary not semantics.
type Composite struct {
	Logic    Logic
	Children []Constraint
}

func (*Composite) constraint() {}

// ID implements Constraint.
func (c *Composite) ID() string {
	return CompositeID(c)
}
