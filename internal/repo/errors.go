// Package repo holds the error values shared by every record-store backend.
// The remote store exposes independently atomic row-level operations only, so
// each backend maps its own failure shapes onto these sentinels and services
// can match them with errors.Is regardless of the configured backend.
package repo

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrListingNotFound = errors.New("shop listing not found")
	ErrItemNotFound    = errors.New("item not found")

	// ErrInsufficientBalance is returned by the conditional debit when the
	// balance no longer covers the cost at write time. The write is rejected,
	// never clamped.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientStock is returned by the conditional stock decrement
	// when the remaining stock no longer covers the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConflict is returned when a guarded write lost its compare-and-swap
	// race more times than the backend was willing to retry.
	ErrConflict = errors.New("concurrent update conflict")
)
