package payout

import (
	"fmt"
	"strings"

	"github.com/amirasaad/payoutrouter/pkg/money"
)

// Destinations maps a currency to the processor account that receives payouts
// in that currency.
type Destinations map[money.Code]string

// Resolver looks up the destination account for a currency. A currency with no
// entry resolves to "" and false, which means the processor's default account.
type Resolver struct {
	destinations Destinations
}

// NewResolver validates the table and copies it so later changes to the input
// map are not observed.
func NewResolver(destinations Destinations) (*Resolver, error) {
	table := make(Destinations, len(destinations))
	for code, account := range destinations {
		normalized, err := money.ParseCode(string(code))
		if err != nil {
			return nil, &ConfigurationError{
				Field:  "PAYOUT_DESTINATIONS",
				Reason: err.Error(),
			}
		}
		account = strings.TrimSpace(account)
		if account == "" {
			return nil, &ConfigurationError{
				Field:  "PAYOUT_DESTINATIONS",
				Reason: fmt.Sprintf("empty account id for %s", normalized),
			}
		}
		table[normalized] = account
	}
	return &Resolver{destinations: table}, nil
}

// Resolve returns the configured destination for code.
func (r *Resolver) Resolve(code money.Code) (string, bool) {
	if r == nil {
		return "", false
	}
	account, ok := r.destinations[code]
	return account, ok
}
