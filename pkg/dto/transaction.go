package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionCreate is a DTO for appending one credit transfer to the ledger.
type TransactionCreate struct {
	ID        uuid.UUID
	Reference string // Remittance reference (RmtInf.Ustrd)
	Recipient string // Creditor name (Cdtr.Nm)
	Amount    decimal.Decimal
	Currency  string
}

// PayoutCreate records the outcome of one routed payout leg.
type PayoutCreate struct {
	Leg              int
	PayoutID         string // Processor payout id, empty on failure
	Status           string
	AmountMinorUnits int64
	Currency         string // Lowercase wire code
	Destination      string
	ErrorCode        string
	Error            string
}

// PayoutRead is a read-optimized DTO for a persisted payout leg.
type PayoutRead struct {
	ID               uuid.UUID
	Leg              int
	PayoutID         string
	Status           string
	AmountMinorUnits int64
	Currency         string
	Destination      string
	ErrorCode        string
	Error            string
	CreatedAt        time.Time
}

// TransactionRead is a read-optimized DTO for ledger queries and API responses.
type TransactionRead struct {
	ID        uuid.UUID
	Reference string
	Recipient string
	Amount    decimal.Decimal
	Currency  string
	Payouts   []PayoutRead // Ordered by leg
	CreatedAt time.Time
}
