package payout

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned by Route and Plan when the amount is not strictly
// positive or the currency is missing. Nothing has been submitted when it is returned.
var ErrInvalidInput = errors.New("invalid payout input")

// GatewayError is a processor-side rejection or failure of a single payout leg.
// It is recorded inline in the outcome list and never aborts the remaining legs.
type GatewayError struct {
	Leg     int    `json:"leg"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payout leg %d rejected (%s): %s", e.Leg, e.Code, e.Message)
	}
	return fmt.Sprintf("payout leg %d rejected: %s", e.Leg, e.Message)
}

// ConfigurationError reports a missing or invalid startup setting. It is fatal.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// PartialExecutionError is returned when routing stopped on an unexpected fault
// after some legs had already been submitted. Submitted payouts are not revoked;
// Outcomes holds everything that happened before the fault.
type PartialExecutionError struct {
	Outcomes []Outcome
	Err      error
}

func (e *PartialExecutionError) Error() string {
	return fmt.Sprintf("payout routing interrupted after %d leg(s): %v", len(e.Outcomes), e.Err)
}

func (e *PartialExecutionError) Unwrap() error {
	return e.Err
}
