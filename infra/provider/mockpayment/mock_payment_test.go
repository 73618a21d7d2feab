package mockpayment

import (
	"context"
	"errors"
	"testing"

	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockPayoutGateway(t *testing.T) {
	gw := NewMockPayoutGateway()
	gw.RejectCurrency("GBP", "balance_insufficient", "insufficient funds")
	ctx := context.Background()

	r1, err := gw.Submit(ctx, payout.Instruction{AmountMinorUnits: 100, Currency: "eur", IdempotencyKey: "k:0"})
	require.NoError(t, err)
	assert.Equal(t, "po_mock_1", r1.ID)
	assert.Equal(t, "pending", r1.Status)

	again, err := gw.Submit(ctx, payout.Instruction{AmountMinorUnits: 100, Currency: "eur", IdempotencyKey: "k:0"})
	require.NoError(t, err)
	assert.Equal(t, r1, again)

	_, err = gw.Submit(ctx, payout.Instruction{AmountMinorUnits: 50, Currency: "gbp"})
	var gwErr *payout.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "balance_insufficient", gwErr.Code)

	assert.Len(t, gw.Submitted(), 2)
}

func TestMockPayoutGateway_CancelledContext(t *testing.T) {
	gw := NewMockPayoutGateway()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Submit(ctx, payout.Instruction{AmountMinorUnits: 1, Currency: "eur"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, gw.Submitted())
}
