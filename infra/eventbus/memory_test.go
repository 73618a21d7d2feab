package eventbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/amirasaad/payoutrouter/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryEventBus_EmitDispatchesByType(t *testing.T) {
	bus := NewWithMemory(discardLogger())

	var failed []events.PayoutLegFailed
	bus.Register(events.EventTypePayoutLegFailed, func(_ context.Context, e eventbus.Event) error {
		failed = append(failed, e.(events.PayoutLegFailed))
		return nil
	})

	ctx := context.Background()
	require.NoError(t, bus.Emit(ctx, events.PayoutLegSucceeded{Leg: 0, PayoutID: "po_1"}))
	require.NoError(t, bus.Emit(ctx, events.PayoutLegFailed{Leg: 1, Code: "balance_insufficient"}))

	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Leg)
	assert.Len(t, bus.Published(), 2)
}

func TestMemoryEventBus_HandlerErrorDoesNotFailEmit(t *testing.T) {
	bus := NewWithMemory(discardLogger())

	calls := 0
	bus.Register(events.EventTypeTransferRouted, func(context.Context, eventbus.Event) error {
		calls++
		return errors.New("downstream unavailable")
	})
	bus.Register(events.EventTypeTransferRouted, func(context.Context, eventbus.Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), events.TransferRouted{Legs: 2}))
	assert.Equal(t, 2, calls)
	require.NoError(t, bus.Close())
}
