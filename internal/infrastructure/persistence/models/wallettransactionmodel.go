package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// WalletTransactionModel rows are append-only; there is deliberately no
// update path for them anywhere in the codebase.
type WalletTransactionModel struct {
	ID               uint            `gorm:"primaryKey"`
	TransactionID    string          `gorm:"uniqueIndex;size:32;not null"`
	OwnerID          int64           `gorm:"index;not null"`
	AmountUSD        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransactionType  string          `gorm:"size:32;not null"`
	ReferenceOrderID string          `gorm:"index;size:32"`
	Description      string          `gorm:"size:255"`
	Metadata         datatypes.JSONMap
	CreatedAt        time.Time
}

func (WalletTransactionModel) TableName() string {
	return "wallet_transactions"
}
