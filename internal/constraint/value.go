package constraint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Value is a sealed interface over the dynamic value types CDL handles.
// Only Null, Bool, Int, Float, String, List, and Map implement it.
// Constraint values and record fields are always one of these seven,
// so operator semantics can type-switch exhaustively instead of
// reflecting over arbitrary Go values.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents a JSON null. A missing record field resolves to a nil
// Value, not Null; operators treat the two alike but parsing preserves
// the distinction for round-tripping.
type Null struct{}

func (Null) value() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Int represents an integer value. Always int64.
type Int int64

func (Int) value() {}

// Float represents a floating-point value.
type Float float64

func (Float) value() {}

// String represents a string value.
type String string

func (String) value() {}

// List represents an ordered sequence of Values.
type List []Value

func (List) value() {}

// Map represents string-keyed Values. Use SortedKeys for deterministic
// iteration.
type Map map[string]Value

func (Map) value() {}

// SortedKeys returns the map's keys in ascending byte order.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromAny converts a JSON-decoded Go value (the output of encoding/json
// into any) to a Value. Numbers decoded as json.Number become Int when
// they parse exactly, Float otherwise; plain float64 values that are
// integral stay Float, since the caller already lost the distinction.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		return Float(val), nil
	case float32:
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number out of range: %s", val)
		}
		return Float(f), nil
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			cv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = cv
		}
		return list, nil
	case map[string]any:
		m := make(Map, len(val))
		for k, elem := range val {
			cv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			m[k] = cv
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// MustFromAny is like FromAny but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFromAny(v any) Value {
	cv, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return cv
}

// RecordFromJSON decodes a JSON object into a Map record. Numbers are
// decoded through json.Number so integers survive as Int.
func RecordFromJSON(data []byte) (Map, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	v, err := FromAny(raw)
	if err != nil {
		return nil, err
	}
	return v.(Map), nil
}

// ToAny converts a Value back to plain Go values (the inverse of
// FromAny), for callers that hand results to encoding/json or yaml.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case String:
		return string(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Map:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}
