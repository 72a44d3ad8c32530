package firefly

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures so the chat layer can pick a reply.
type Kind int

const (
	// KindUnauthorized means the ledger rejected the API key.
	KindUnauthorized Kind = iota + 1
	// KindNotFound means the ledger does not know the requested resource.
	KindNotFound
	// KindTimeout means the ledger did not answer within the request timeout.
	KindTimeout
	// KindMalformed means the ledger answered with an unexpected status or body.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed response"
	default:
		return "unknown"
	}
}

// GatewayError is the error type for all ledger calls.
type GatewayError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("firefly: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("firefly: %s: %s", e.Op, e.Kind)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a GatewayError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Kind == kind
}
