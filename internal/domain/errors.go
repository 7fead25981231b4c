package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound is the root of every missing-entity error.
	ErrNotFound = errors.New("not found")

	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrListingNotFound = fmt.Errorf("listing %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)

	// ErrInvalidRange is the root of range and sign validation errors.
	ErrInvalidRange  = errors.New("invalid range")
	ErrNegativePrice = fmt.Errorf("%w: total price must not be negative", ErrInvalidRange)
	ErrPriceOverflow = fmt.Errorf("%w: total price exceeds the representable range", ErrInvalidRange)

	// Ledger errors
	ErrInsufficientFunds   = errors.New("insufficient points balance")
	ErrPriceMismatch       = errors.New("total price does not match nights times nightly price")
	ErrPriceImmutable      = errors.New("total price cannot be changed directly")
	ErrDatesUnavailable    = errors.New("listing is not available for the requested dates")
	ErrInvalidNightlyPrice = errors.New("nightly price must be positive")
	ErrInvalidPoints       = errors.New("points must be positive")

	// Concurrency and storage errors. Infrastructure failures are marked with
	// these so the cause survives while errors.Is keeps working.
	ErrConflict    = errors.New("concurrent update conflict")
	ErrUnavailable = errors.New("storage unavailable")
)

// IsRetryable reports whether the caller may retry the whole operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrUnavailable)
}
