// Package events holds the events published while routing credit transfers.
package events

import (
	"time"

	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/google/uuid"
)

const (
	EventTypePayoutLegSucceeded = "PayoutLegSucceeded"
	EventTypePayoutLegFailed    = "PayoutLegFailed"
	EventTypeTransferRouted     = "TransferRouted"
)

// TransferEvent identifies the ledger transaction an event belongs to.
type TransferEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Reference     string    `json:"reference"`
	MessageID     string    `json:"message_id,omitempty"`
}

// PayoutLegSucceeded is emitted when the processor accepted a payout leg.
type PayoutLegSucceeded struct {
	TransferEvent
	Leg              int       `json:"leg"`
	PayoutID         string    `json:"payout_id"`
	Status           string    `json:"status"`
	AmountMinorUnits int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Destination      string    `json:"destination,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

func (PayoutLegSucceeded) Type() string { return EventTypePayoutLegSucceeded }

// PayoutLegFailed is emitted when the processor rejected a payout leg.
// Nothing retries it; the event is the signal for manual follow-up.
type PayoutLegFailed struct {
	TransferEvent
	Leg              int       `json:"leg"`
	AmountMinorUnits int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Destination      string    `json:"destination,omitempty"`
	Code             string    `json:"code,omitempty"`
	Message          string    `json:"message"`
	Timestamp        time.Time `json:"timestamp"`
}

func (PayoutLegFailed) Type() string { return EventTypePayoutLegFailed }

// TransferRouted is emitted once every leg of a transfer has been attempted.
type TransferRouted struct {
	TransferEvent
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	Legs      int       `json:"legs"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

func (TransferRouted) Type() string { return EventTypeTransferRouted }

// Factories returns decoders for every event type, keyed by Type().
func Factories() map[string]eventbus.Factory {
	return map[string]eventbus.Factory{
		EventTypePayoutLegSucceeded: func() eventbus.Event { return &PayoutLegSucceeded{} },
		EventTypePayoutLegFailed:    func() eventbus.Event { return &PayoutLegFailed{} },
		EventTypeTransferRouted:     func() eventbus.Event { return &TransferRouted{} },
	}
}
