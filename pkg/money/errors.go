package money

import "errors"

// Common money package errors
var (
	// ErrInvalidAmount is returned when an amount cannot be parsed or has
	// more decimal places than the currency allows.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrOverflow is returned when arithmetic would exceed the int64 range.
	ErrOverflow = errors.New("amount exceeds maximum safe integer value")
)
