package ingest

import (
	"time"

	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/amirasaad/payoutrouter/pkg/events"
	"github.com/amirasaad/payoutrouter/pkg/iso20022"
)

// transferEvents builds one event per payout leg followed by TransferRouted.
func transferEvents(messageID string, t iso20022.Transfer, tr TransferResult, now time.Time) []eventbus.Event {
	base := events.TransferEvent{
		TransactionID: tr.TransactionID,
		Reference:     t.Reference,
		MessageID:     messageID,
	}
	out := make([]eventbus.Event, 0, len(tr.Payouts)+1)
	for _, o := range tr.Payouts {
		if o.Succeeded() {
			out = append(out, events.PayoutLegSucceeded{
				TransferEvent:    base,
				Leg:              o.Leg,
				PayoutID:         o.Receipt.ID,
				Status:           o.Receipt.Status,
				AmountMinorUnits: o.Instruction.AmountMinorUnits,
				Currency:         o.Instruction.Currency,
				Destination:      o.Instruction.Destination,
				Timestamp:        now,
			})
			continue
		}
		failed := events.PayoutLegFailed{
			TransferEvent:    base,
			Leg:              o.Leg,
			AmountMinorUnits: o.Instruction.AmountMinorUnits,
			Currency:         o.Instruction.Currency,
			Destination:      o.Instruction.Destination,
			Timestamp:        now,
		}
		if o.Err != nil {
			failed.Code = o.Err.Code
			failed.Message = o.Err.Message
		}
		out = append(out, failed)
	}
	return append(out, events.TransferRouted{
		TransferEvent: base,
		Amount:        tr.Amount,
		Currency:      tr.Currency,
		Legs:          len(tr.Payouts),
		Summary:       string(tr.Summary),
		Timestamp:     now,
	})
}
