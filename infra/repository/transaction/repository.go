package infrarepo // import alias for infra/repository/transaction

import (
	"context"
	"fmt"

	infrarepository "github.com/amirasaad/payoutrouter/infra/repository"
	"github.com/amirasaad/payoutrouter/pkg/dto"
	repo "github.com/amirasaad/payoutrouter/pkg/repository/transaction"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a transaction ledger repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements transaction.Repository.
func (r *repository) Create(
	ctx context.Context,
	create dto.TransactionCreate,
) error {
	if create.ID == uuid.Nil {
		return fmt.Errorf("create transaction: missing id")
	}
	tx := mapCreateDTOToModel(create)
	return infrarepository.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&tx).Error
	})
}

// RecordPayouts implements transaction.Repository.
func (r *repository) RecordPayouts(
	ctx context.Context,
	transactionID uuid.UUID,
	payouts []dto.PayoutCreate,
) error {
	if len(payouts) == 0 {
		return nil
	}
	rows := make([]Payout, 0, len(payouts))
	for _, p := range payouts {
		rows = append(rows, mapPayoutDTOToModel(transactionID, p))
	}
	return infrarepository.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&rows).Error
	})
}

// Get implements transaction.Repository.
func (r *repository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*dto.TransactionRead, error) {
	var tx Transaction
	err := infrarepository.WrapError(func() error {
		return r.db.WithContext(
			ctx,
		).Preload(
			"Payouts",
			orderByLeg,
		).First(
			&tx,
			"id = ?",
			id,
		).Error
	})
	if err != nil {
		return nil, err
	}
	return mapModelToReadDTO(&tx), nil
}

// ListByReference implements transaction.Repository.
func (r *repository) ListByReference(
	ctx context.Context,
	reference string,
) ([]*dto.TransactionRead, error) {
	var txs []Transaction
	err := infrarepository.WrapError(func() error {
		return r.db.WithContext(
			ctx,
		).Preload(
			"Payouts",
			orderByLeg,
		).Where(
			"reference = ?",
			reference,
		).Order(
			"created_at",
		).Find(
			&txs,
		).Error
	})
	if err != nil {
		return nil, err
	}
	result := make([]*dto.TransactionRead, 0, len(txs))
	for i := range txs {
		result = append(result, mapModelToReadDTO(&txs[i]))
	}
	return result, nil
}

func orderByLeg(db *gorm.DB) *gorm.DB {
	return db.Order("leg")
}

// --- Mappers ---

func mapCreateDTOToModel(create dto.TransactionCreate) Transaction {
	return Transaction{
		ID:        create.ID,
		Reference: create.Reference,
		Recipient: create.Recipient,
		Amount:    create.Amount,
		Currency:  create.Currency,
	}
}

func mapPayoutDTOToModel(transactionID uuid.UUID, p dto.PayoutCreate) Payout {
	return Payout{
		ID:            uuid.New(),
		TransactionID: transactionID,
		Leg:           p.Leg,
		PayoutID:      p.PayoutID,
		Status:        p.Status,
		Amount:        p.AmountMinorUnits,
		Currency:      p.Currency,
		Destination:   p.Destination,
		ErrorCode:     p.ErrorCode,
		Error:         p.Error,
	}
}

func mapModelToReadDTO(tx *Transaction) *dto.TransactionRead {
	read := &dto.TransactionRead{
		ID:        tx.ID,
		Reference: tx.Reference,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		CreatedAt: tx.CreatedAt,
		Payouts:   make([]dto.PayoutRead, 0, len(tx.Payouts)),
	}
	for _, p := range tx.Payouts {
		read.Payouts = append(read.Payouts, dto.PayoutRead{
			ID:               p.ID,
			Leg:              p.Leg,
			PayoutID:         p.PayoutID,
			Status:           p.Status,
			AmountMinorUnits: p.Amount,
			Currency:         p.Currency,
			Destination:      p.Destination,
			ErrorCode:        p.ErrorCode,
			Error:            p.Error,
			CreatedAt:        p.CreatedAt,
		})
	}
	return read
}
