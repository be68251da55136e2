package wallet

import (
	"context"

	"github.com/shopspring/decimal"
)

// TransactionRepository is append-only: entries are created and read, never
// mutated or deleted.
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	ListByOwner(ctx context.Context, ownerID int64, limit int) ([]*Transaction, error)
	ListByReferenceOrder(ctx context.Context, orderID string) ([]*Transaction, error)

	// SumByOwner derives the wallet balance.
	SumByOwner(ctx context.Context, ownerID int64) (decimal.Decimal, error)
}
