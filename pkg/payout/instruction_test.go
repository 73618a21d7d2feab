package payout_test

import (
	"encoding/json"
	"testing"

	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	b := payout.NewBuilder("", "")
	ins := b.Build(d("1250.5"), money.GBP, "ba_gbp")

	assert.Equal(t, payout.Instruction{
		AmountMinorUnits: 125050,
		Currency:         "gbp",
		Method:           "standard",
		Destination:      "ba_gbp",
		Descriptor:       "PrivateLedgerPayout",
	}, ins)
	assert.Equal(t, money.RoundHalfUp, b.Rounding())
}

func TestInstruction_OmitsEmptyDestination(t *testing.T) {
	ins := payout.NewBuilder(money.Truncate, "Ledger").Build(d("1"), money.EUR, "")
	raw, err := json.Marshal(ins)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"amount":100,"currency":"eur","method":"standard","statement_descriptor":"Ledger"}`,
		string(raw),
	)
}

func TestOutcome_MarshalJSON(t *testing.T) {
	ok := payout.Outcome{
		Leg:     0,
		Receipt: &payout.Receipt{ID: "po_1", Status: "pending", Amount: 500000, Currency: "eur"},
	}
	raw, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"leg":0,"id":"po_1","status":"pending","amount":500000,"currency":"eur"}`, string(raw))

	failed := payout.Outcome{Leg: 1, Err: &payout.GatewayError{Leg: 1, Message: "no funds"}}
	raw, err = json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"leg":1,"error":"no funds"}`, string(raw))
}

func TestSummarize(t *testing.T) {
	success := payout.Outcome{Receipt: &payout.Receipt{ID: "po"}}
	failure := payout.Outcome{Err: &payout.GatewayError{Message: "x"}}

	assert.Equal(t, payout.SummaryNone, payout.Summarize(nil))
	assert.Equal(t, payout.SummaryAllSucceeded, payout.Summarize([]payout.Outcome{success, success}))
	assert.Equal(t, payout.SummaryPartiallyFailed, payout.Summarize([]payout.Outcome{success, failure}))
	assert.Equal(t, payout.SummaryAllFailed, payout.Summarize([]payout.Outcome{failure}))
}
