package parser

import (
	"errors"
	"fmt"
)

// ParseError reports a structurally invalid constraint definition:
// missing required keys, wrong key types, or unrecognized literals.
// Raised synchronously during parsing - fail fast, before any record
// is tested.
type ParseError struct {
	// Field is the dot-path of the offending key within the definition,
	// e.g. "constraints[2].operator". Empty for document-level errors.
	Field string

	// Message is a human-readable description.
	Message string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse error: %s", e.Message)
	}
	return fmt.Sprintf("parse error at %s: %s", e.Field, e.Message)
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// NonTerminatingError reports that the halt checker rejected a tree.
// Raised by the parser, never by the evaluator - the caller never
// receives a Constraint that failed the check.
type NonTerminatingError struct {
	Violation *HaltViolation
}

func (e *NonTerminatingError) Error() string {
	return fmt.Sprintf("constraint may not terminate: %s (%s)", e.Violation.Reason, e.Violation.Code)
}

// IsNonTerminating reports whether err is (or wraps) a
// NonTerminatingError.
func IsNonTerminating(err error) bool {
	var nte *NonTerminatingError
	return errors.As(err, &nte)
}
