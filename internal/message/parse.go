package message

import (
	"errors"
	"strings"

	"github.com/dvloznov/ledgerbot/internal/amount"
)

// ErrAmbiguousGrammar is returned when the token shape of a message matches
// neither the transfer nor the expense/revenue pattern.
var ErrAmbiguousGrammar = errors.New("message does not match any transaction pattern")

// ErrUnresolvedAccount is returned when a message omits the asset account
// and the session has no default asset account configured.
var ErrUnresolvedAccount = errors.New("no asset account given and no default configured")

// Type is the ledger-side transaction type.
type Type string

const (
	TypeWithdrawal Type = "withdrawal"
	TypeDeposit    Type = "deposit"
	TypeTransfer   Type = "transfer"
)

// Intent is a fully assigned transaction request, ready for the ledger
// gateway. Category is optional and empty when absent.
type Intent struct {
	Type        Type
	Description string
	Amount      amount.Parsed
	Category    string
	Source      string
	Destination string
}

// transferDescription is the fixed description for numeric-first messages.
const transferDescription = "Transfer"

// BuildIntent maps a tokenized message onto a transaction intent.
//
// Shapes, by (leading, trailing) token counts:
//
//	(0, 2) unsigned          -> transfer: amount source destination
//	(>0, 1)                  -> counter account only; asset side falls back
//	                            to defaultAsset
//	(>0, 2)                  -> source destination (the rightmost trailing
//	                            token is never treated as a category)
//	(>0, 3)                  -> category source destination
//
// A leading '+' on the amount marks a deposit: the counter account is a
// revenue account paying into the asset account, so source and destination
// swap roles relative to a withdrawal. BuildIntent is a pure function of its
// arguments; resolving token spelling against ledger data happens elsewhere.
func BuildIntent(split Split, amt amount.Parsed, defaultAsset string) (Intent, error) {
	if len(split.Leading) == 0 {
		if len(split.Trailing) != 2 || amt.Positive {
			return Intent{}, ErrAmbiguousGrammar
		}
		return Intent{
			Type:        TypeTransfer,
			Description: transferDescription,
			Amount:      amt,
			Source:      split.Trailing[0],
			Destination: split.Trailing[1],
		}, nil
	}

	intent := Intent{
		Description: strings.Join(split.Leading, " "),
		Amount:      amt,
	}

	var counter, asset string
	switch len(split.Trailing) {
	case 1:
		if defaultAsset == "" {
			return Intent{}, ErrUnresolvedAccount
		}
		counter, asset = split.Trailing[0], defaultAsset
	case 2:
		if amt.Positive {
			counter, asset = split.Trailing[0], split.Trailing[1]
		} else {
			asset, counter = split.Trailing[0], split.Trailing[1]
		}
	case 3:
		intent.Category = split.Trailing[0]
		if amt.Positive {
			counter, asset = split.Trailing[1], split.Trailing[2]
		} else {
			asset, counter = split.Trailing[1], split.Trailing[2]
		}
	default:
		return Intent{}, ErrAmbiguousGrammar
	}

	if amt.Positive {
		intent.Type = TypeDeposit
		intent.Source = counter
		intent.Destination = asset
	} else {
		intent.Type = TypeWithdrawal
		intent.Source = asset
		intent.Destination = counter
	}

	return intent, nil
}
