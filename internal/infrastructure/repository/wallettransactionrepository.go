package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"nomadly/internal/domain/wallet"
	"nomadly/internal/infrastructure/persistence/mappers"
	"nomadly/internal/infrastructure/persistence/models"
	"nomadly/internal/shared/db"
)

// WalletTransactionRepository only ever inserts and reads; the ledger is
// append-only.
type WalletTransactionRepository struct {
	db *gorm.DB
}

func NewWalletTransactionRepository(db *gorm.DB) *WalletTransactionRepository {
	return &WalletTransactionRepository{db: db}
}

func (r *WalletTransactionRepository) Create(ctx context.Context, t *wallet.Transaction) error {
	model := mappers.WalletTransactionToModel(t)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create wallet transaction: %w", err)
	}
	t.SetID(model.ID)
	return nil
}

func (r *WalletTransactionRepository) ListByOwner(ctx context.Context, ownerID int64, limit int) ([]*wallet.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []models.WalletTransactionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return r.toDomainList(rows)
}

func (r *WalletTransactionRepository) ListByReferenceOrder(ctx context.Context, orderID string) ([]*wallet.Transaction, error) {
	var rows []models.WalletTransactionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("reference_order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return r.toDomainList(rows)
}

func (r *WalletTransactionRepository) SumByOwner(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.WalletTransactionModel{}).
		Select("COALESCE(SUM(amount_usd), 0)").
		Where("owner_id = ?", ownerID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum wallet transactions: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *WalletTransactionRepository) toDomainList(rows []models.WalletTransactionModel) ([]*wallet.Transaction, error) {
	txs := make([]*wallet.Transaction, 0, len(rows))
	for i := range rows {
		t, err := mappers.WalletTransactionToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}
