package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"nomadly/internal/domain/order"
	ordervo "nomadly/internal/domain/order/valueobjects"
	"nomadly/internal/domain/wallet"
	"nomadly/internal/infrastructure/persistence/models"
	"nomadly/internal/shared/db"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	gdb := setupTestDB(t)
	require.NoError(t, gdb.AutoMigrate(&models.WalletTransactionModel{}))
	return gdb
}

func creditTransaction(t *testing.T, amount string) *wallet.Transaction {
	t.Helper()
	tx, err := wallet.NewTransaction(7, decimal.RequireFromString(amount),
		wallet.TransactionTypeOverpaymentCredit, "ord-1", "surplus credit")
	require.NoError(t, err)
	return tx
}

func TestTransactionManager_CommitsAcrossRepositories(t *testing.T) {
	gdb := setupLedgerTestDB(t)
	orderRepo := NewOrderRepository(gdb)
	walletRepo := NewWalletTransactionRepository(gdb)
	tm := db.NewTransactionManager(gdb)
	ctx := context.Background()

	ord, err := order.NewOrder(7, ordervo.ServiceTypeDomainRegistration,
		decimal.RequireFromString("42.87"), "eth", ordervo.ServiceDetails{
			DomainName:       "nomad-site.com",
			NameserverChoice: ordervo.NameserverChoiceManagedDNS,
		})
	require.NoError(t, err)

	// The single sqlite connection belongs to the transaction while it is
	// open, so every write inside must go through the transaction context.
	err = tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := orderRepo.Create(txCtx, ord); err != nil {
			return err
		}
		return walletRepo.Create(txCtx, creditTransaction(t, "7.13"))
	})
	require.NoError(t, err)
	orderID := ord.OrderID()

	_, err = orderRepo.GetByOrderID(ctx, orderID)
	assert.NoError(t, err)

	sum, err := walletRepo.SumByOwner(ctx, 7)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("7.13")))
}

func TestTransactionManager_RollsBackAllWrites(t *testing.T) {
	gdb := setupLedgerTestDB(t)
	walletRepo := NewWalletTransactionRepository(gdb)
	tm := db.NewTransactionManager(gdb)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := walletRepo.Create(txCtx, creditTransaction(t, "7.13")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	sum, err := walletRepo.SumByOwner(ctx, 7)
	require.NoError(t, err)
	assert.True(t, sum.IsZero(), "rolled-back credit must not be visible")
}
