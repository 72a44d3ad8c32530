package amount

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidExpressions(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		want     string
		positive bool
	}{
		{name: "plain integer", expr: "100", want: "100"},
		{name: "decimal", expr: "12.50", want: "12.5"},
		{name: "addition", expr: "100+5", want: "105"},
		{name: "subtraction", expr: "100-5", want: "95"},
		{name: "multiplication", expr: "4*2.5", want: "10"},
		{name: "division", expr: "100/4", want: "25"},
		{name: "precedence", expr: "2+3*4", want: "14"},
		{name: "left associativity", expr: "100-10-10", want: "80"},
		{name: "left associativity division", expr: "100/10/2", want: "5"},
		{name: "parentheses", expr: "(100 + 5) / 2", want: "52.5"},
		{name: "nested parentheses", expr: "((1+2)*(3+4))", want: "21"},
		{name: "leading plus marks revenue", expr: "+1500", want: "1500", positive: true},
		{name: "leading plus with expression", expr: "+(100+5)/2", want: "52.5", positive: true},
		{name: "leading minus", expr: "-42", want: "42"},
		{name: "negative result is absolute", expr: "5-10", want: "5"},
		{name: "no binary float artifacts", expr: "0.1+0.2", want: "0.3"},
		{name: "internal spaces", expr: " 100 / 4 ", want: "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Value.String())
			assert.Equal(t, tt.positive, got.Positive)
		})
	}
}

func TestParse_InvalidExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "empty", expr: ""},
		{name: "spaces only", expr: "   "},
		{name: "letters", expr: "100abc"},
		{name: "unsafe call", expr: "__import__('os')"},
		{name: "comma", expr: "1,5"},
		{name: "unbalanced open", expr: "(100+5"},
		{name: "unbalanced close", expr: "100+5)"},
		{name: "dangling operator", expr: "100+"},
		{name: "double dot", expr: "1..5"},
		{name: "bare operator", expr: "*"},
		{name: "adjacent numbers", expr: "100 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			require.Error(t, err)

			var evalErr *EvalError
			assert.True(t, errors.As(err, &evalErr), "want *EvalError, got %T", err)
		})
	}
}

func TestParse_DivisionByZero(t *testing.T) {
	_, err := Parse("100 / 0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDivideByZero))

	var evalErr *EvalError
	assert.True(t, errors.As(err, &evalErr))
}

func TestParse_CurrencyPrecision(t *testing.T) {
	got, err := Parse("10/3")
	require.NoError(t, err)
	// At least two fractional digits survive the division.
	assert.Equal(t, "3.33", got.Value.StringFixed(2))
}
