// Package constraint defines the CDL data model: the dynamic Value union
// used for constraint values and record fields, the three constraint
// variants (atomic, conditional, composite), the duration grammar for
// temporal windows, and the content-derived identity scheme.
//
// Everything in this package is immutable after construction. Constraints
// are built bottom-up from literals or by internal/parser and never
// mutated; evaluation lives in internal/engine.
package constraint
