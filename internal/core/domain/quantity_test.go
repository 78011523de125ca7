package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, q)

	for _, raw := range []string{"", "abc", "1.5", "0", "-2", "3e2"} {
		_, err := ParseQuantity(raw)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "input %q", raw)
	}
}

func TestParseCandidateQuantity_AllowsZero(t *testing.T) {
	q, err := ParseCandidateQuantity("0")
	require.NoError(t, err)
	assert.Equal(t, 0, q)

	_, err = ParseCandidateQuantity("-1")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestDeductionsFor(t *testing.T) {
	p := Product{
		ID: "p1",
		Articles: []ArticleRequirement{
			{ArticleID: "a1", AmountRequired: 2},
			{ArticleID: "a2", AmountRequired: 5},
		},
	}

	got, err := DeductionsFor(p, 3)
	require.NoError(t, err)

	assert.Equal(t, []StockDeduction{
		{ID: "a1", AmountToSubtract: 6},
		{ID: "a2", AmountToSubtract: 15},
	}, got)
}

func TestDeductionsFor_NoRequirements(t *testing.T) {
	got, err := DeductionsFor(Product{ID: "p1"}, 4)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestDeductionsFor_Overflow(t *testing.T) {
	p := Product{ID: "p1", Articles: []ArticleRequirement{{ArticleID: "a1", AmountRequired: 2}}}

	got, err := DeductionsFor(p, math.MaxInt/2+1)

	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Nil(t, got)
}

func TestRequiredAmount(t *testing.T) {
	cases := []struct {
		name     string
		perUnit  int
		quantity int
		want     int
		ok       bool
	}{
		{"plain", 4, 3, 12, true},
		{"zero quantity", math.MaxInt, 0, 0, true},
		{"largest fit", 1, math.MaxInt, math.MaxInt, true},
		{"wraps positive", 2, math.MaxInt/2 + 1, 0, false},
		{"wraps large", math.MaxInt, math.MaxInt, 0, false},
		{"min times minus one", math.MinInt, -1, 0, false},
		{"minus one times min", -1, math.MinInt, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := RequiredAmount(tc.perUnit, tc.quantity)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
