package ingest

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	infraeventbus "github.com/amirasaad/payoutrouter/infra/eventbus"
	"github.com/amirasaad/payoutrouter/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFailureLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	bus := infraeventbus.NewWithMemory(logger)
	RegisterFailureLogger(bus, logger)

	ctx := context.Background()
	require.NoError(t, bus.Emit(ctx, events.PayoutLegFailed{Leg: 1, Code: "balance_insufficient", Currency: "gbp"}))
	require.NoError(t, bus.Emit(ctx, &events.PayoutLegFailed{Leg: 0, Code: "account_closed", Currency: "eur"}))

	out := buf.String()
	assert.Contains(t, out, "manual follow-up required")
	assert.Contains(t, out, "code=balance_insufficient")
	assert.Contains(t, out, "code=account_closed")
}
