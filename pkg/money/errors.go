package money

import "errors"

// Common money package errors
var (
	// ErrInvalidAmount is returned when an amount is zero, negative or not representable.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidCurrency is returned when a currency code is not three ASCII letters.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrInvalidRoundingPolicy is returned when a rounding policy name is unknown.
	ErrInvalidRoundingPolicy = errors.New("invalid rounding policy")

	// ErrAmountExceedsMaxSafeInt is returned when the minor unit value overflows int64.
	ErrAmountExceedsMaxSafeInt = errors.New("amount exceeds maximum safe integer value")
)
