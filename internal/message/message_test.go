package message

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/ledgerbot/internal/amount"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantLeading  []string
		wantAmount   string
		wantTrailing []string
		wantValue    string
	}{
		{
			name:         "expense with all fields",
			text:         "Groceries 100 Food Checking Supermarket",
			wantLeading:  []string{"Groceries"},
			wantAmount:   "100",
			wantTrailing: []string{"Food", "Checking", "Supermarket"},
			wantValue:    "100",
		},
		{
			name:         "transfer shape",
			text:         "100 Checking Savings",
			wantLeading:  []string{},
			wantAmount:   "100",
			wantTrailing: []string{"Checking", "Savings"},
			wantValue:    "100",
		},
		{
			name:         "parenthesized amount with spaces",
			text:         "Dinner (100 + 5) / 2 Restaurant",
			wantLeading:  []string{"Dinner"},
			wantAmount:   "(100 + 5) / 2",
			wantTrailing: []string{"Restaurant"},
			wantValue:    "52.5",
		},
		{
			name:         "signed amount",
			text:         "Salary +1500 Work Checking",
			wantLeading:  []string{"Salary"},
			wantAmount:   "+1500",
			wantTrailing: []string{"Work", "Checking"},
			wantValue:    "1500",
		},
		{
			name:         "multi word description",
			text:         "Coffee with friends 4.50 Cash",
			wantLeading:  []string{"Coffee", "with", "friends"},
			wantAmount:   "4.50",
			wantTrailing: []string{"Cash"},
			wantValue:    "4.5",
		},
		{
			name:         "spaced parenthesized expression",
			text:         "( 100 + 5 ) / 2 Checking Savings",
			wantLeading:  []string{},
			wantAmount:   "( 100 + 5 ) / 2",
			wantTrailing: []string{"Checking", "Savings"},
			wantValue:    "52.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, parsed, err := Tokenize(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLeading, append([]string{}, split.Leading...))
			assert.Equal(t, tt.wantAmount, split.Amount)
			assert.Equal(t, tt.wantTrailing, append([]string{}, split.Trailing...))
			assert.Equal(t, tt.wantValue, parsed.Value.String())
		})
	}
}

func TestTokenize_NoAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "words only", text: "just some words"},
		{name: "empty", text: ""},
		{name: "spaces", text: "   "},
		{name: "command like", text: "/help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Tokenize(tt.text)
			assert.ErrorIs(t, err, ErrNoAmount)
		})
	}
}

func TestTokenize_DivisionByZeroIsNotShortened(t *testing.T) {
	// The run "100 / 0" evaluates syntactically, so the division by zero
	// must surface instead of the region shrinking to "100".
	_, _, err := Tokenize("100 / 0 Account1 Account2")
	require.Error(t, err)
	assert.ErrorIs(t, err, amount.ErrDivideByZero)

	var evalErr *amount.EvalError
	assert.True(t, errors.As(err, &evalErr))
}

func TestBuildIntent(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		defaultAsset string
		want         Intent
	}{
		{
			name: "expense with category asset and counter",
			text: "Groceries 100 Food Checking Supermarket",
			want: Intent{
				Type:        TypeWithdrawal,
				Description: "Groceries",
				Category:    "Food",
				Source:      "Checking",
				Destination: "Supermarket",
			},
		},
		{
			name: "revenue with counter and asset",
			text: "Salary +1500 Work Checking",
			want: Intent{
				Type:        TypeDeposit,
				Description: "Salary",
				Source:      "Work",
				Destination: "Checking",
			},
		},
		{
			name: "transfer",
			text: "100 Checking Savings",
			want: Intent{
				Type:        TypeTransfer,
				Description: "Transfer",
				Source:      "Checking",
				Destination: "Savings",
			},
		},
		{
			name:         "expense with counter only uses default asset",
			text:         "Dinner (100 + 5) / 2 Restaurant",
			defaultAsset: "Checking",
			want: Intent{
				Type:        TypeWithdrawal,
				Description: "Dinner",
				Source:      "Checking",
				Destination: "Restaurant",
			},
		},
		{
			name: "expense with asset and counter",
			text: "Lunch 12.50 Cash Restaurant",
			want: Intent{
				Type:        TypeWithdrawal,
				Description: "Lunch",
				Source:      "Cash",
				Destination: "Restaurant",
			},
		},
		{
			name:         "revenue with counter only uses default asset",
			text:         "Refund +20 Amazon",
			defaultAsset: "Checking",
			want: Intent{
				Type:        TypeDeposit,
				Description: "Refund",
				Source:      "Amazon",
				Destination: "Checking",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, parsed, err := Tokenize(tt.text)
			require.NoError(t, err)

			got, err := BuildIntent(split, parsed, tt.defaultAsset)
			require.NoError(t, err)

			assert.Equal(t, tt.want.Type, got.Type)
			assert.Equal(t, tt.want.Description, got.Description)
			assert.Equal(t, tt.want.Category, got.Category)
			assert.Equal(t, tt.want.Source, got.Source)
			assert.Equal(t, tt.want.Destination, got.Destination)
		})
	}
}

func TestBuildIntent_AmbiguousGrammar(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "amount alone", text: "100"},
		{name: "amount with one token", text: "100 Checking"},
		{name: "amount with three tokens", text: "100 A B C"},
		{name: "signed transfer shape", text: "+100 Checking Savings"},
		{name: "too many trailing tokens", text: "Stuff 100 a b c d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, parsed, err := Tokenize(tt.text)
			require.NoError(t, err)

			_, err = BuildIntent(split, parsed, "Checking")
			assert.ErrorIs(t, err, ErrAmbiguousGrammar)
		})
	}
}

func TestBuildIntent_UnresolvedAccount(t *testing.T) {
	split, parsed, err := Tokenize("Dinner (100 + 5) / 2 Restaurant")
	require.NoError(t, err)

	_, err = BuildIntent(split, parsed, "")
	assert.ErrorIs(t, err, ErrUnresolvedAccount)

	// Same message succeeds once a default asset account exists.
	got, err := BuildIntent(split, parsed, "Checking")
	require.NoError(t, err)
	assert.Equal(t, "Checking", got.Source)
	assert.Equal(t, "Restaurant", got.Destination)
}

func TestBuildIntent_Idempotent(t *testing.T) {
	const text = "Groceries (100 + 5) / 2 Food Checking Supermarket"

	splitA, parsedA, err := Tokenize(text)
	require.NoError(t, err)
	intentA, err := BuildIntent(splitA, parsedA, "Checking")
	require.NoError(t, err)

	splitB, parsedB, err := Tokenize(text)
	require.NoError(t, err)
	intentB, err := BuildIntent(splitB, parsedB, "Checking")
	require.NoError(t, err)

	assert.Equal(t, intentA, intentB)
}
