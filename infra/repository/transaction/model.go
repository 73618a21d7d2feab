package infrarepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one received credit transfer. Rows are appended, never updated.
type Transaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference string          `gorm:"type:varchar(140);index"`
	Recipient string          `gorm:"type:varchar(140)"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Currency  string          `gorm:"type:varchar(3);not null"`
	CreatedAt time.Time
	Payouts   []Payout `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

// Payout is one routed payout leg of a transaction.
type Payout struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Leg           int       `gorm:"not null"`
	PayoutID      string    `gorm:"type:varchar(64);column:payout_id;index"`
	Status        string    `gorm:"type:varchar(32);not null"`
	Amount        int64     `gorm:"not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`
	Destination   string    `gorm:"type:varchar(64)"`
	ErrorCode     string    `gorm:"type:varchar(64)"`
	Error         string    `gorm:"type:text"`
	CreatedAt     time.Time
}

// TableName specifies the table name for the Payout model.
func (Payout) TableName() string {
	return "payouts"
}

// Models lists the tables created by AutoMigrate at startup.
func Models() []any {
	return []any{&Transaction{}, &Payout{}}
}
