package transaction

import (
	"context"

	"github.com/amirasaad/payoutrouter/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines the append-only ledger of received credit transfers
// and the payout legs routed for them.
type Repository interface {
	// Create inserts a new transaction record from a DTO.
	Create(ctx context.Context, create dto.TransactionCreate) error

	// RecordPayouts appends the routed payout legs of a transaction.
	RecordPayouts(ctx context.Context, transactionID uuid.UUID, payouts []dto.PayoutCreate) error

	// Get retrieves a transaction and its payout legs by ID.
	Get(ctx context.Context, id uuid.UUID) (*dto.TransactionRead, error)

	// ListByReference lists every transaction received with a remittance reference.
	ListByReference(ctx context.Context, reference string) ([]*dto.TransactionRead, error)
}
