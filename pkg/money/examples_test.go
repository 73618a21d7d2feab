package money_test

import (
	"fmt"

	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/shopspring/decimal"
)

// ExampleToMinorUnits shows the difference between the two rounding policies.
func ExampleToMinorUnits() {
	amount := decimal.RequireFromString("19.999")
	fmt.Println(money.ToMinorUnits(amount, money.RoundHalfUp))
	fmt.Println(money.ToMinorUnits(amount, money.Truncate))
	// Output:
	// 2000
	// 1999
}
