// Package money provides the conversion between major-unit decimal amounts
// and the integer minor units payment processors expect.
//
// Invariants:
//   - Only two-decimal currencies are supported; the scale is a fixed ×100.
//   - Amounts are carried as decimal.Decimal until they reach the wire.
//   - Currency codes are stored uppercase and sent lowercase.
package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitScale is the number of minor units in one major unit.
const MinorUnitScale = 100

var (
	scale       = decimal.NewFromInt(MinorUnitScale)
	maxSafeInt  = decimal.NewFromInt(math.MaxInt64)
	zeroDecimal = decimal.Zero
)

// RoundingPolicy controls how sub-cent remainders are handled when
// converting to minor units.
type RoundingPolicy string

const (
	// RoundHalfUp rounds to the nearest minor unit, halves away from zero.
	RoundHalfUp RoundingPolicy = "half_up"
	// Truncate drops the sub-cent remainder (round toward zero).
	Truncate RoundingPolicy = "truncate"
)

// DefaultRoundingPolicy is used when no policy is configured.
const DefaultRoundingPolicy = RoundHalfUp

// ParseRoundingPolicy maps a configuration value to a RoundingPolicy.
// An empty value selects DefaultRoundingPolicy.
func ParseRoundingPolicy(s string) (RoundingPolicy, error) {
	switch RoundingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultRoundingPolicy, nil
	case RoundHalfUp:
		return RoundHalfUp, nil
	case Truncate:
		return Truncate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRoundingPolicy, s)
	}
}

// Decode implements envconfig.Decoder.
func (p *RoundingPolicy) Decode(value string) error {
	parsed, err := ParseRoundingPolicy(value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ToMinorUnits scales amount by 100 and applies the rounding policy.
// It does not validate the sign of amount; callers do.
func ToMinorUnits(amount decimal.Decimal, policy RoundingPolicy) int64 {
	scaled := amount.Mul(scale)
	switch policy {
	case Truncate:
		scaled = scaled.Truncate(0)
	default:
		// decimal.Round rounds half away from zero.
		scaled = scaled.Round(0)
	}
	return scaled.IntPart()
}

// FromMinorUnits converts an integer minor unit value back to major units.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(scale)
}

// ValidateAmount checks that amount is strictly positive and that its
// minor unit value fits in an int64.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.Cmp(zeroDecimal) <= 0 {
		return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, amount.String())
	}
	if amount.Mul(scale).GreaterThan(maxSafeInt) {
		return fmt.Errorf("%w: %s", ErrAmountExceedsMaxSafeInt, amount.String())
	}
	return nil
}

// ParseAmount parses a major-unit decimal string as found in inbound
// messages ("1250.00"). Non-numeric and non-finite values are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
