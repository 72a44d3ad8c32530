// Package amount evaluates the arithmetic sub-expression of a chat message.
//
// The grammar is deliberately tiny: decimal numbers, + - * /, and
// parentheses. Anything else is rejected before evaluation, so untrusted
// chat input never reaches a general-purpose evaluator.
package amount

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrDivideByZero is reported when an otherwise valid expression divides by zero.
var ErrDivideByZero = errors.New("division by zero")

// EvalError describes why an amount expression was rejected.
type EvalError struct {
	Expr   string
	Reason string
	Err    error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %q: %s", e.Expr, e.Reason)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// Parsed is the evaluated amount of a message.
// Positive records whether the raw text carried an explicit leading '+',
// which marks a revenue-direction transaction. Value is the absolute
// magnitude, suitable for the ledger payload.
type Parsed struct {
	Raw      string
	Value    decimal.Decimal
	Positive bool
}

const allowedChars = "0123456789.+-*/() "

// Parse evaluates raw as an arithmetic expression with standard operator
// precedence and left-to-right associativity. It fails with *EvalError when
// the expression contains characters outside the fixed grammar, is empty or
// malformed, has unbalanced parentheses, or divides by zero.
func Parse(raw string) (Parsed, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Parsed{}, &EvalError{Expr: raw, Reason: "empty expression"}
	}

	for _, r := range trimmed {
		if !strings.ContainsRune(allowedChars, r) {
			return Parsed{}, &EvalError{Expr: raw, Reason: fmt.Sprintf("character %q is not allowed", r)}
		}
	}

	p := &parser{input: trimmed}
	value, err := p.expr()
	if err != nil {
		return Parsed{}, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return Parsed{}, &EvalError{Expr: trimmed, Reason: fmt.Sprintf("unexpected %q at position %d", p.input[p.pos], p.pos)}
	}

	return Parsed{
		Raw:      trimmed,
		Value:    value.Abs(),
		Positive: strings.HasPrefix(trimmed, "+"),
	}, nil
}

// parser is a recursive-descent evaluator over the fixed token set.
// Grammar: expr = term {('+'|'-') term} ; term = factor {('*'|'/') factor} ;
// factor = ['+'|'-'] (number | '(' expr ')').
type parser struct {
	input string
	pos   int
}

func (p *parser) expr() (decimal.Decimal, error) {
	left, err := p.term()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.peek() == '+':
			p.pos++
			right, err := p.term()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Add(right)
		case p.peek() == '-':
			p.pos++
			right, err := p.term()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Sub(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) term() (decimal.Decimal, error) {
	left, err := p.factor()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.peek() == '*':
			p.pos++
			right, err := p.factor()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Mul(right)
		case p.peek() == '/':
			p.pos++
			right, err := p.factor()
			if err != nil {
				return decimal.Zero, err
			}
			if right.IsZero() {
				return decimal.Zero, &EvalError{Expr: p.input, Reason: ErrDivideByZero.Error(), Err: ErrDivideByZero}
			}
			left = left.Div(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) factor() (decimal.Decimal, error) {
	p.skipSpaces()
	switch {
	case p.peek() == '+':
		p.pos++
		return p.factor()
	case p.peek() == '-':
		p.pos++
		v, err := p.factor()
		if err != nil {
			return decimal.Zero, err
		}
		return v.Neg(), nil
	case p.peek() == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return decimal.Zero, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return decimal.Zero, &EvalError{Expr: p.input, Reason: "unbalanced parentheses"}
		}
		p.pos++
		return v, nil
	default:
		return p.number()
	}
}

func (p *parser) number() (decimal.Decimal, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		reason := "expression ends unexpectedly"
		if start < len(p.input) {
			reason = fmt.Sprintf("expected a number at position %d", start)
		}
		return decimal.Zero, &EvalError{Expr: p.input, Reason: reason}
	}
	v, err := decimal.NewFromString(p.input[start:p.pos])
	if err != nil {
		return decimal.Zero, &EvalError{Expr: p.input, Reason: fmt.Sprintf("invalid number %q", p.input[start:p.pos])}
	}
	return v, nil
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

// peek returns the byte at the current position or 0 at end of input.
func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}
