package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDomain(t *testing.T) {
	for _, d := range Domains {
		got, ok := ParseDomain(string(d))
		assert.True(t, ok)
		assert.Equal(t, d, got)
	}

	_, ok := ParseDomain("astrology")
	assert.False(t, ok)
}

func TestParseOperator(t *testing.T) {
	for _, op := range Operators {
		got, ok := ParseOperator(string(op))
		assert.True(t, ok, "operator %q should parse", op)
		assert.Equal(t, op, got)
	}

	_, ok := ParseOperator("regex")
	assert.False(t, ok)
}

func TestOperator_Families(t *testing.T) {
	assert.True(t, OpWithin.IsTemporal())
	assert.True(t, OpAfter.IsTemporal())
	assert.True(t, OpBefore.IsTemporal())
	assert.False(t, OpEq.IsTemporal())
	assert.False(t, OpSumLt.IsTemporal())

	assert.True(t, OpSumLt.IsAggregation())
	assert.True(t, OpCountGe.IsAggregation())
	assert.True(t, OpAvgLe.IsAggregation())
	assert.False(t, OpEq.IsAggregation())
	assert.False(t, OpWithin.IsAggregation())
}

func TestOperator_AggParts(t *testing.T) {
	testCases := []struct {
		op       Operator
		fn, comp string
	}{
		{OpSumLt, "sum", "lt"},
		{OpSumGe, "sum", "ge"},
		{OpCountGt, "count", "gt"},
		{OpAvgLe, "avg", "le"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.fn, tc.op.AggFunc())
		assert.Equal(t, tc.comp, tc.op.AggComparator())
	}

	assert.Empty(t, OpEq.AggFunc())
	assert.Empty(t, OpEq.AggComparator())
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"reject", "warn", "log"} {
		a, ok := ParseAction(s)
		assert.True(t, ok)
		assert.Equal(t, Action(s), a)
	}

	_, ok := ParseAction("explode")
	assert.False(t, ok)
}

func TestParseLogic(t *testing.T) {
	for _, s := range []string{"and", "or", "not", "AND", "Or"} {
		_, ok := ParseLogic(s)
		assert.True(t, ok, "logic %q should parse", s)
	}

	_, ok := ParseLogic("xor")
	assert.False(t, ok)
}
