// Package cache defines the delivery tracker used to process each webhook
// delivery at most once.
package cache

import (
	"context"
	"errors"
)

// ErrDeliveryInFlight is returned when another worker holds the claim for a
// delivery that has not finished yet. The sender should retry later.
var ErrDeliveryInFlight = errors.New("delivery is already being processed")

// Work is the processing run for a delivery. It reports whether its side
// effects must be remembered even when it also returns an error; a run that
// committed nothing lets a later redelivery try again.
type Work func(ctx context.Context) (commit bool, err error)

// DeliveryTracker runs Work at most once per key within its retention window.
type DeliveryTracker interface {
	// Do runs work for key unless the key was already committed or is
	// being processed. duplicate reports that the key was already committed;
	// a claim still held elsewhere may surface as ErrDeliveryInFlight.
	Do(ctx context.Context, key string, work Work) (duplicate bool, err error)
}
