package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verist/cdl/internal/constraint"
)

func TestCompare(t *testing.T) {
	testCases := []struct {
		name  string
		op    constraint.Operator
		field constraint.Value
		want  constraint.Value
		pass  bool
	}{
		{"eq int", constraint.OpEq, constraint.Int(5), constraint.Int(5), true},
		{"eq int float cross", constraint.OpEq, constraint.Int(5), constraint.Float(5), true},
		{"eq mismatch", constraint.OpEq, constraint.Int(5), constraint.Int(6), false},
		{"eq string", constraint.OpEq, constraint.String("a"), constraint.String("a"), true},
		{"eq nil null", constraint.OpEq, nil, constraint.Null{}, true},
		{"eq nil vs value", constraint.OpEq, nil, constraint.Int(0), false},
		{"eq list", constraint.OpEq, constraint.List{constraint.Int(1)}, constraint.List{constraint.Int(1)}, true},
		{"eq map", constraint.OpEq, constraint.Map{"k": constraint.Int(1)}, constraint.Map{"k": constraint.Int(1)}, true},
		{"ne", constraint.OpNe, constraint.String("a"), constraint.String("b"), true},
		{"ne equal", constraint.OpNe, constraint.Int(1), constraint.Int(1), false},

		{"lt pass", constraint.OpLt, constraint.Int(500), constraint.Int(1000), true},
		{"lt fail", constraint.OpLt, constraint.Int(1500), constraint.Int(1000), false},
		{"lt equal fails", constraint.OpLt, constraint.Int(1000), constraint.Int(1000), false},
		{"le equal passes", constraint.OpLe, constraint.Int(1000), constraint.Int(1000), true},
		{"gt", constraint.OpGt, constraint.Float(2.5), constraint.Int(2), true},
		{"ge", constraint.OpGe, constraint.Int(3), constraint.Float(3), true},
		{"lt strings lexical", constraint.OpLt, constraint.String("apple"), constraint.String("banana"), true},

		{"contains", constraint.OpContains, constraint.String("hello world"), constraint.String("world"), true},
		{"contains miss", constraint.OpContains, constraint.String("hello"), constraint.String("x"), false},
		{"matches", constraint.OpMatches, constraint.String("user-42"), constraint.String(`^user-\d+$`), true},
		{"matches miss", constraint.OpMatches, constraint.String("nope"), constraint.String(`^\d+$`), false},

		{"in list", constraint.OpIn, constraint.String("b"), constraint.List{constraint.String("a"), constraint.String("b")}, true},
		{"in list miss", constraint.OpIn, constraint.String("z"), constraint.List{constraint.String("a")}, false},
		{"in string substring", constraint.OpIn, constraint.String("ell"), constraint.String("hello"), true},
		{"in map key", constraint.OpIn, constraint.String("k"), constraint.Map{"k": constraint.Int(1)}, true},
		{"not_in", constraint.OpNotIn, constraint.String("z"), constraint.List{constraint.String("a")}, true},

		{"exists present", constraint.OpExists, constraint.Int(0), constraint.Bool(true), true},
		{"exists nil", constraint.OpExists, nil, constraint.Bool(true), false},
		{"exists null", constraint.OpExists, constraint.Null{}, constraint.Bool(true), false},

		{"empty string", constraint.OpEmpty, constraint.String(""), constraint.Bool(true), true},
		{"empty list", constraint.OpEmpty, constraint.List{}, constraint.Bool(true), true},
		{"empty nil", constraint.OpEmpty, nil, constraint.Bool(true), true},
		{"empty nonempty", constraint.OpEmpty, constraint.String("x"), constraint.Bool(true), false},
		{"empty zero int not empty", constraint.OpEmpty, constraint.Int(0), constraint.Bool(true), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := compare(tc.op, tc.field, tc.want)
			require.NoError(t, err)
			assert.Equal(t, tc.pass, got)
		})
	}
}

func TestCompare_TypeErrors(t *testing.T) {
	testCases := []struct {
		name  string
		op    constraint.Operator
		field constraint.Value
		want  constraint.Value
	}{
		{"order string vs int", constraint.OpLt, constraint.String("a"), constraint.Int(1)},
		{"order bool", constraint.OpGt, constraint.Bool(true), constraint.Bool(false)},
		{"contains non-string value", constraint.OpContains, constraint.String("x"), constraint.Int(1)},
		{"matches bad regex", constraint.OpMatches, constraint.String("x"), constraint.String("[")},
		{"in non-container", constraint.OpIn, constraint.String("x"), constraint.Int(1)},
		{"in map non-string field", constraint.OpIn, constraint.Int(1), constraint.Map{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compare(tc.op, tc.field, tc.want)
			assert.Error(t, err)
		})
	}
}

func TestCoerceFloat(t *testing.T) {
	f, ok := coerceFloat(constraint.String(" 42.5 "))
	require.True(t, ok)
	assert.Equal(t, 42.5, f)

	_, ok = coerceFloat(constraint.String("abc"))
	assert.False(t, ok)

	f, ok = coerceFloat(constraint.Int(7))
	require.True(t, ok)
	assert.Equal(t, 7.0, f)
}

func TestIsFalsy(t *testing.T) {
	assert.True(t, isFalsy(nil))
	assert.True(t, isFalsy(constraint.Null{}))
	assert.True(t, isFalsy(constraint.Bool(false)))
	assert.True(t, isFalsy(constraint.Int(0)))
	assert.True(t, isFalsy(constraint.String("")))
	assert.False(t, isFalsy(constraint.String("alice")))
	assert.False(t, isFalsy(constraint.Int(-1)))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "5500", formatNumber(5500))
	assert.Equal(t, "2.5", formatNumber(2.5))
}
