// Package engine evaluates CDL constraint trees against records.
//
// The evaluator is the only component with observable side effects:
// aggregation-family atomics append the record's field value to the
// evaluator's windowed aggregation state before computing the aggregate
// (observe-and-decide). Everything else is a pure read.
//
// Once a tree has passed the halt checker, Evaluate always produces a
// verdict: runtime problems (missing fields, bad regexes, type
// mismatches) become failing results with a diagnostic message, never
// errors or panics.
package engine
