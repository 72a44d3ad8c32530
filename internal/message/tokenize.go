// Package message turns a raw chat line into a validated transaction intent.
//
// A message carries exactly one amount region, which may be a single token
// ("100", "+12.5") or a parenthesized expression spanning several tokens
// ("(100 + 5) / 2"). Tokens before the amount form the description; tokens
// after it map positionally to category and account fields.
package message

import (
	"errors"
	"strings"

	"github.com/dvloznov/ledgerbot/internal/amount"
)

// ErrNoAmount is returned when no token or parenthesized run of tokens
// parses as an arithmetic amount expression.
var ErrNoAmount = errors.New("no amount expression found in message")

// Split is the positional decomposition of a message around its amount.
type Split struct {
	Leading  []string // description tokens before the amount
	Amount   string   // the raw amount sub-expression
	Trailing []string // category/account tokens after the amount
}

// Tokenize locates the amount region of text, evaluates it, and splits the
// remaining tokens around it. The amount region starts at the first token
// made only of arithmetic characters and extends over the longest following
// run of such tokens that still evaluates; a run that evaluates but divides
// by zero fails immediately rather than being shortened.
func Tokenize(text string) (Split, amount.Parsed, error) {
	fields := strings.Fields(text)

	for start, tok := range fields {
		if !candidateToken(tok) {
			continue
		}

		end := start
		for end+1 < len(fields) && arithmeticToken(fields[end+1]) {
			end++
		}

		for ; end >= start; end-- {
			expr := strings.Join(fields[start:end+1], " ")
			parsed, err := amount.Parse(expr)
			if err == nil {
				return Split{
					Leading:  fields[:start],
					Amount:   expr,
					Trailing: fields[end+1:],
				}, parsed, nil
			}
			if errors.Is(err, amount.ErrDivideByZero) {
				return Split{}, amount.Parsed{}, err
			}
		}
	}

	return Split{}, amount.Parsed{}, ErrNoAmount
}

// candidateToken reports whether tok can begin an amount region.
// It must be arithmetic-only and either contain a digit or open a
// parenthesized expression.
func candidateToken(tok string) bool {
	if !arithmeticToken(tok) {
		return false
	}
	if strings.ContainsAny(tok, "0123456789") {
		return true
	}
	return strings.HasPrefix(tok, "(")
}

func arithmeticToken(tok string) bool {
	for _, r := range tok {
		if !strings.ContainsRune("0123456789.+-*/()", r) {
			return false
		}
	}
	return len(tok) > 0
}
