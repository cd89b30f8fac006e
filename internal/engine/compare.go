package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/verist/cdl/internal/constraint"
)

// compare applies a comparison-family operator to a resolved field value
// and the constraint's value. Errors describe runtime type problems and
// are converted to failing verdicts by the caller - they never escape
// Evaluate.
func compare(op constraint.Operator, field, want constraint.Value) (bool, error) {
	switch op {
	case constraint.OpEq:
		return valuesEqual(field, want), nil
	case constraint.OpNe:
		return !valuesEqual(field, want), nil
	case constraint.OpLt, constraint.OpGt, constraint.OpLe, constraint.OpGe:
		return order(op, field, want)
	case constraint.OpContains:
		s, ok := want.(constraint.String)
		if !ok {
			return false, fmt.Errorf("contains requires a string value, got %s", typeName(want))
		}
		return strings.Contains(stringify(field), string(s)), nil
	case constraint.OpMatches:
		pattern, ok := want.(constraint.String)
		if !ok {
			return false, fmt.Errorf("matches requires a string pattern, got %s", typeName(want))
		}
		re, err := regexp.Compile(string(pattern))
		if err != nil {
			return false, fmt.Errorf("bad regex %q: %v", pattern, err)
		}
		return re.MatchString(stringify(field)), nil
	case constraint.OpIn:
		return member(field, want)
	case constraint.OpNotIn:
		ok, err := member(field, want)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case constraint.OpExists:
		return !isNil(field), nil
	case constraint.OpEmpty:
		return isEmpty(field), nil
	default:
		return false, fmt.Errorf("unknown operator: %s", op)
	}
}

// valuesEqual implements eq/ne. Numeric values compare across Int/Float;
// lists and maps compare element-wise; nil and Null are equal.
func valuesEqual(a, b constraint.Value) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}

	switch av := a.(type) {
	case constraint.Bool:
		bv, ok := b.(constraint.Bool)
		return ok && av == bv
	case constraint.String:
		bv, ok := b.(constraint.String)
		return ok && av == bv
	case constraint.List:
		bv, ok := b.(constraint.List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case constraint.Map:
		bv, ok := b.(constraint.Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, present := bv[k]
			if !present || !valuesEqual(v, bvv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// order implements lt/gt/le/ge. Numbers order numerically, strings
// lexically; anything else is a type mismatch.
func order(op constraint.Operator, a, b constraint.Value) (bool, error) {
	var cmp int
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		if !bok {
			return false, fmt.Errorf("cannot order %s against %s", typeName(a), typeName(b))
		}
		switch {
		case af < bf:
			cmp = -1
		case af > bf:
			cmp = 1
		}
	} else if as, aok := a.(constraint.String); aok {
		bs, bok := b.(constraint.String)
		if !bok {
			return false, fmt.Errorf("cannot order %s against %s", typeName(a), typeName(b))
		}
		cmp = strings.Compare(string(as), string(bs))
	} else {
		return false, fmt.Errorf("cannot order %s against %s", typeName(a), typeName(b))
	}

	switch op {
	case constraint.OpLt:
		return cmp < 0, nil
	case constraint.OpGt:
		return cmp > 0, nil
	case constraint.OpLe:
		return cmp <= 0, nil
	default: // OpGe
		return cmp >= 0, nil
	}
}

// member implements in/not_in. The constraint value must be a list
// (element membership), a string (substring), or a map (key lookup).
func member(field, want constraint.Value) (bool, error) {
	switch container := want.(type) {
	case constraint.List:
		for _, elem := range container {
			if valuesEqual(field, elem) {
				return true, nil
			}
		}
		return false, nil
	case constraint.String:
		s, ok := field.(constraint.String)
		if !ok {
			return false, fmt.Errorf("in over a string requires a string field, got %s", typeName(field))
		}
		return strings.Contains(string(container), string(s)), nil
	case constraint.Map:
		s, ok := field.(constraint.String)
		if !ok {
			return false, fmt.Errorf("in over a map requires a string field, got %s", typeName(field))
		}
		_, present := container[string(s)]
		return present, nil
	default:
		return false, fmt.Errorf("in requires a list, string, or map value, got %s", typeName(want))
	}
}

func isNil(v constraint.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(constraint.Null)
	return ok
}

func isEmpty(v constraint.Value) bool {
	switch val := v.(type) {
	case nil, constraint.Null:
		return true
	case constraint.String:
		return val == ""
	case constraint.List:
		return len(val) == 0
	case constraint.Map:
		return len(val) == 0
	default:
		return false
	}
}

// isFalsy reports whether a value defaults the aggregation group key:
// absent, null, false, zero, empty string, or empty container.
func isFalsy(v constraint.Value) bool {
	switch val := v.(type) {
	case nil, constraint.Null:
		return true
	case constraint.Bool:
		return !bool(val)
	case constraint.Int:
		return val == 0
	case constraint.Float:
		return val == 0
	case constraint.String:
		return val == ""
	case constraint.List:
		return len(val) == 0
	case constraint.Map:
		return len(val) == 0
	default:
		return false
	}
}

// asFloat returns the numeric value of Int or Float. Strict - no string
// coercion; see coerceFloat for the temporal family's looser rules.
func asFloat(v constraint.Value) (float64, bool) {
	switch val := v.(type) {
	case constraint.Int:
		return float64(val), true
	case constraint.Float:
		return float64(val), true
	default:
		return 0, false
	}
}

// coerceFloat additionally accepts numeric strings, matching the
// temporal operators' tolerance for timestamps serialized as strings.
func coerceFloat(v constraint.Value) (float64, bool) {
	if f, ok := asFloat(v); ok {
		return f, true
	}
	if s, ok := v.(constraint.String); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

// stringify renders a value for substring and regex operators.
func stringify(v constraint.Value) string {
	switch val := v.(type) {
	case nil, constraint.Null:
		return ""
	case constraint.String:
		return string(val)
	default:
		return string(constraint.MustCanonical(val))
	}
}

// formatNumber renders aggregates and limits in diagnostics without
// trailing float noise.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func typeName(v constraint.Value) string {
	switch v.(type) {
	case nil, constraint.Null:
		return "null"
	case constraint.Bool:
		return "bool"
	case constraint.Int:
		return "int"
	case constraint.Float:
		return "float"
	case constraint.String:
		return "string"
	case constraint.List:
		return "list"
	case constraint.Map:
		return "map"
	default:
		return "unknown"
	}
}
