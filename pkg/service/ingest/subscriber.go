package ingest

import (
	"context"
	"log/slog"

	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/amirasaad/payoutrouter/pkg/events"
)

// RegisterFailureLogger logs every rejected payout leg as an actionable
// warning. Rejected legs are never retried, so the log line is the cue for
// manual follow-up.
func RegisterFailureLogger(bus eventbus.Bus, logger *slog.Logger) {
	log := logger.With("handler", "payout-leg-failed")
	bus.Register(events.EventTypePayoutLegFailed, func(_ context.Context, e eventbus.Event) error {
		var failed events.PayoutLegFailed
		switch v := e.(type) {
		case events.PayoutLegFailed:
			failed = v
		case *events.PayoutLegFailed:
			failed = *v
		default:
			log.Error("unexpected event payload", "event_type", e.Type())
			return nil
		}
		log.Warn("⚠️ Payout leg rejected; manual follow-up required",
			"transaction_id", failed.TransactionID,
			"reference", failed.Reference,
			"leg", failed.Leg,
			"amount", failed.AmountMinorUnits,
			"currency", failed.Currency,
			"destination", failed.Destination,
			"code", failed.Code,
			"error", failed.Message,
		)
		return nil
	})
}
