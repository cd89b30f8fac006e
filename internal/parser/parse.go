// Package parser converts untyped (JSON-compatible) constraint
// definitions into the typed constraint model, gated by the halt
// checker: a caller never receives a tree that could not be evaluated
// in bounded work.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/verist/cdl/internal/constraint"
)

// Parse builds a Constraint from a definition and verifies it halts.
// Dispatch order: an "if" key means conditional, a "logic" key means
// composite, anything else is atomic.
func Parse(def map[string]any) (constraint.Constraint, error) {
	return ParseWithOptions(def, true)
}

// ParseWithOptions is Parse with the halt check optional. Skipping the
// check is for callers that re-validate trees they already admitted.
func ParseWithOptions(def map[string]any, checkHalts bool) (constraint.Constraint, error) {
	c, err := parseNode(def, "")
	if err != nil {
		return nil, err
	}

	if checkHalts {
		if v := CheckHalts(c); v != nil {
			return nil, &NonTerminatingError{Violation: v}
		}
	}
	return c, nil
}

// ParseJSON decodes a JSON definition and parses it. Numbers decode
// through json.Number so integer values stay integers.
func ParseJSON(data []byte) (constraint.Constraint, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var def map[string]any
	if err := dec.Decode(&def); err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("decode definition: %v", err)}
	}
	return Parse(def)
}

func parseNode(def map[string]any, path string) (constraint.Constraint, error) {
	if _, ok := def["if"]; ok {
		return parseConditional(def, path)
	}
	if _, ok := def["logic"]; ok {
		return parseComposite(def, path)
	}
	return parseAtomic(def, path)
}

func parseConditional(def map[string]any, path string) (*constraint.Conditional, error) {
	condDef, err := childMap(def, "if", path)
	if err != nil {
		return nil, err
	}
	condition, err := parseNode(condDef, join(path, "if"))
	if err != nil {
		return nil, err
	}

	if _, ok := def["then"]; !ok {
		return nil, &ParseError{Field: join(path, "then"), Message: "conditional requires a then branch"}
	}
	thenDef, err := childMap(def, "then", path)
	if err != nil {
		return nil, err
	}
	then, err := parseNode(thenDef, join(path, "then"))
	if err != nil {
		return nil, err
	}

	var elseC constraint.Constraint
	if _, ok := def["else"]; ok {
		elseDef, err := childMap(def, "else", path)
		if err != nil {
			return nil, err
		}
		elseC, err = parseNode(elseDef, join(path, "else"))
		if err != nil {
			return nil, err
		}
	}

	return &constraint.Conditional{Condition: condition, Then: then, Else: elseC}, nil
}

func parseComposite(def map[string]any, path string) (*constraint.Composite, error) {
	logicRaw, err := requiredString(def, "logic", path)
	if err != nil {
		return nil, err
	}
	logic, ok := constraint.ParseLogic(logicRaw)
	if !ok {
		return nil, &ParseError{
			Field:   join(path, "logic"),
			Message: fmt.Sprintf("unknown logic %q (want and, or, not)", logicRaw),
		}
	}

	rawChildren, ok := def["constraints"]
	if !ok {
		return nil, &ParseError{Field: join(path, "constraints"), Message: "composite requires a constraints list"}
	}
	childList, ok := rawChildren.([]any)
	if !ok {
		return nil, &ParseError{Field: join(path, "constraints"), Message: "constraints must be a list"}
	}

	children := make([]constraint.Constraint, len(childList))
	for i, raw := range childList {
		childDef, ok := raw.(map[string]any)
		if !ok {
			return nil, &ParseError{
				Field:   fmt.Sprintf("%s[%d]", join(path, "constraints"), i),
				Message: "constraint must be an object",
			}
		}
		child, err := parseNode(childDef, fmt.Sprintf("%s[%d]", join(path, "constraints"), i))
		if err != nil {
			return nil, err
		}
		children[i] = child
	}

	return &constraint.Composite{Logic: logic, Children: children}, nil
}

func parseAtomic(def map[string]any, path string) (*constraint.Atomic, error) {
	field, err := requiredString(def, "field", path)
	if err != nil {
		return nil, err
	}
	opRaw, err := requiredString(def, "operator", path)
	if err != nil {
		return nil, err
	}
	op, ok := constraint.ParseOperator(opRaw)
	if !ok {
		return nil, &ParseError{
			Field:   join(path, "operator"),
			Message: fmt.Sprintf("unknown operator %q", opRaw),
		}
	}

	domainRaw, err := optionalString(def, "domain", string(constraint.DomainCustom), path)
	if err != nil {
		return nil, err
	}
	domain, ok := constraint.ParseDomain(domainRaw)
	if !ok {
		return nil, &ParseError{
			Field:   join(path, "domain"),
			Message: fmt.Sprintf("unknown domain %q", domainRaw),
		}
	}

	actionRaw, err := optionalString(def, "action", string(constraint.ActionReject), path)
	if err != nil {
		return nil, err
	}
	action, ok := constraint.ParseAction(actionRaw)
	if !ok {
		return nil, &ParseError{
			Field:   join(path, "action"),
			Message: fmt.Sprintf("unknown action %q (want reject, warn, log)", actionRaw),
		}
	}

	// An absent value key parses to Null, so operators like exists and
	// empty hash identically whether or not the key was written out.
	value, err := constraint.FromAny(def["value"])
	if err != nil {
		return nil, &ParseError{Field: join(path, "value"), Message: err.Error()}
	}

	message, err := optionalString(def, "message", "", path)
	if err != nil {
		return nil, err
	}
	window, err := optionalString(def, "window", "", path)
	if err != nil {
		return nil, err
	}
	if window != "" {
		// Duration well-formedness is a construction-time concern.
		if _, derr := constraint.ParseDuration(window); derr != nil {
			return nil, fmt.Errorf("%s: %w", join(path, "window"), derr)
		}
	}
	groupBy, err := optionalString(def, "group_by", "", path)
	if err != nil {
		return nil, err
	}
	reference, err := optionalString(def, "reference", "", path)
	if err != nil {
		return nil, err
	}

	return &constraint.Atomic{
		Domain:    domain,
		Field:     field,
		Operator:  op,
		Value:     value,
		Message:   message,
		Action:    action,
		Window:    window,
		GroupBy:   groupBy,
		Reference: reference,
	}, nil
}

func childMap(def map[string]any, key, path string) (map[string]any, error) {
	m, ok := def[key].(map[string]any)
	if !ok {
		return nil, &ParseError{Field: join(path, key), Message: "must be a constraint object"}
	}
	return m, nil
}

func requiredString(def map[string]any, key, path string) (string, error) {
	raw, ok := def[key]
	if !ok {
		return "", &ParseError{Field: join(path, key), Message: "required"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ParseError{Field: join(path, key), Message: "must be a string"}
	}
	return s, nil
}

func optionalString(def map[string]any, key, fallback, path string) (string, error) {
	raw, ok := def[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ParseError{Field: join(path, key), Message: "must be a string"}
	}
	return s, nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
