// Package shoperr defines the storefront error taxonomy. Storage and provider
// failures are converted into these kinds at component boundaries so the
// transport layer never sees a raw driver error.
package shoperr

import (
	"errors"
	"fmt"
)

// Error is a kinded domain error. Code is surfaced in handler summary logs.
type Error struct {
	code string
	msg  string
}

// Error returns the human readable message.
func (e *Error) Error() string { return e.msg }

// Code returns the stable machine readable error code.
func (e *Error) Code() string { return e.code }

// New constructs a kinded error. Intended for package level sentinels.
func New(code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

var (
	// ErrEmptyCart is returned when checkout is attempted with no cart items.
	ErrEmptyCart = New("EMPTY_CART", "cart is empty")
	// ErrAlreadyPaid is returned when payment is requested for a paid order.
	ErrAlreadyPaid = New("ALREADY_PAID", "order is already paid")
	// ErrZeroAmount signals a malformed order whose total computed to zero.
	ErrZeroAmount = New("ZERO_AMOUNT", "order total is zero")
	// ErrProviderUnavailable marks a transient payment provider failure.
	ErrProviderUnavailable = New("PROVIDER_UNAVAILABLE", "payment provider unavailable")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = New("NOT_FOUND", "not found")
	// ErrPersistence wraps failed transactional writes after rollback.
	ErrPersistence = New("PERSISTENCE", "persistence failure")
)

// Wrap annotates err with a sentinel kind while keeping both in the chain.
func Wrap(kind *Error, err error) error {
	if err == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind *Error) bool {
	return errors.Is(err, kind)
}
