// Package walleterr defines the tagged error kinds shared across the
// wallet module, so callers can branch on failure category with
// errors.Is/As instead of string matching.
package walleterr

import "fmt"

// Kind tags an Error with a stable category a caller can switch on.
type Kind string

const (
	KindInvalidSecret     Kind = "invalid_secret"
	KindInvalidPoint      Kind = "invalid_point"
	KindUnknownKeyset     Kind = "unknown_keyset"
	KindInactiveKeyset    Kind = "inactive_keyset"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindAmountMismatch    Kind = "amount_mismatch"
	KindUnbalanced        Kind = "unbalanced"
	KindDLEQFailed        Kind = "dleq_failed"
	KindAlreadySpent      Kind = "already_spent"
	KindQuotePending      Kind = "quote_pending"
	KindQuoteExpired      Kind = "quote_expired"
	KindNetwork           Kind = "network"
	KindProtocol          Kind = "protocol"
	KindStorage           Kind = "storage"
	KindUnsafeState       Kind = "unsafe_state"
	KindInvalidToken      Kind = "invalid_token"
	KindMintMismatch      Kind = "mint_mismatch"
	KindNotFound          Kind = "not_found"
)

// Error is the wallet module's concrete error type: a stable Kind plus
// a human-readable message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Kind, so
// errors.Is(err, walleterr.New(KindAlreadySpent, "")) works without
// comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error tagging an underlying cause with a Kind.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}
