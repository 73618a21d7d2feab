package payout_test

import (
	"testing"

	"github.com/amirasaad/payoutrouter/internal/fixtures/mocks"
	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/shopspring/decimal"
)

// FuzzPlan checks the routing invariants for arbitrary cent amounts.
func FuzzPlan(f *testing.F) {
	f.Add(int64(700000), "EUR")
	f.Add(int64(500000), "USD")
	f.Add(int64(1), "GBP")
	f.Add(int64(123456789), "chf")

	f.Fuzz(func(t *testing.T, cents int64, currency string) {
		if cents <= 0 || cents > 1e15 {
			t.Skip()
		}
		code, err := money.ParseCode(currency)
		if err != nil {
			t.Skip()
		}
		r := newRouter(t, mocks.NewMockGateway(t), testPolicy())
		amount := decimal.New(cents, -2)

		plan, err := r.Plan(amount, currency)
		if err != nil {
			t.Fatalf("Plan(%s, %q) failed: %v", amount, currency, err)
		}

		var total int64
		for _, ins := range plan {
			if ins.AmountMinorUnits < 1 {
				t.Fatalf("zero-value instruction emitted: %+v", ins)
			}
			total += ins.AmountMinorUnits
		}
		if total != cents {
			t.Fatalf("legs sum to %d, want %d", total, cents)
		}

		isEUR := code == money.EUR || code == money.USD
		switch {
		case !isEUR:
			if len(plan) != 1 || plan[0].Currency != code.Wire() {
				t.Fatalf("default rule violated: %+v", plan)
			}
		case cents <= 500000:
			if len(plan) != 1 || plan[0].Currency != "eur" {
				t.Fatalf("under-limit rule violated: %+v", plan)
			}
		default:
			if len(plan) != 2 || plan[0].AmountMinorUnits != 500000 ||
				plan[0].Currency != "eur" || plan[1].Currency != "gbp" {
				t.Fatalf("split rule violated: %+v", plan)
			}
		}
	})
}
