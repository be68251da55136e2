package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"nomadly/internal/domain/order"
	ordervo "nomadly/internal/domain/order/valueobjects"
	"nomadly/internal/infrastructure/persistence/models"
	apperrors "nomadly/internal/shared/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection keeps concurrent claims serialized at the driver
	// instead of failing with busy errors.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.OrderModel{})
	require.NoError(t, err)

	return db
}

func createTestOrder(t *testing.T, repo *OrderRepository) *order.Order {
	t.Helper()
	ord, err := order.NewOrder(7, ordervo.ServiceTypeDomainRegistration,
		decimal.RequireFromString("42.87"), "eth", ordervo.ServiceDetails{
			DomainName:       "nomad-site.com",
			NameserverChoice: ordervo.NameserverChoiceManagedDNS,
			ContactEmail:     "owner@example.com",
		})
	require.NoError(t, err)
	ord.SetPaymentTerms("0xabc", decimal.RequireFromString("0.01"))
	require.NoError(t, repo.Create(context.Background(), ord))
	return ord
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ord := createTestOrder(t, repo)

	found, err := repo.GetByOrderID(context.Background(), ord.OrderID())
	require.NoError(t, err)
	assert.Equal(t, ord.OrderID(), found.OrderID())
	assert.Equal(t, ord.OwnerID(), found.OwnerID())
	assert.True(t, found.RequestedAmountUSD().Equal(decimal.RequireFromString("42.87")))
	assert.Equal(t, "0xabc", found.PaymentAddress())
	assert.Equal(t, ordervo.PaymentStatusPending, found.PaymentStatus())
	assert.Equal(t, "nomad-site.com", found.ServiceDetails().DomainName)
}

func TestOrderRepository_GetByOrderID_NotFound(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))

	_, err := repo.GetByOrderID(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestOrderRepository_UpdatePersistsMetadata(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ord := createTestOrder(t, repo)

	require.NoError(t, ord.MarkConfirmed())
	ord.SetRegistrationPending(true)
	ord.SetMetadata("needs_manual_reconciliation", true)
	ord.SetMetadata("fulfillment_attempts", 2)
	require.NoError(t, repo.Update(context.Background(), ord))

	found, err := repo.GetByOrderID(context.Background(), ord.OrderID())
	require.NoError(t, err)
	assert.Equal(t, ordervo.PaymentStatusConfirmed, found.PaymentStatus())
	assert.True(t, found.RegistrationPending())

	flagged, ok := found.MetadataValue("needs_manual_reconciliation")
	require.True(t, ok)
	assert.Equal(t, true, flagged)

	// JSON round-trips numbers as float64.
	attempts, ok := found.MetadataValue("fulfillment_attempts")
	require.True(t, ok)
	assert.EqualValues(t, 2, attempts)
}

func TestOrderRepository_ClaimProcessing(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ord := createTestOrder(t, repo)
	ctx := context.Background()
	expected := []ordervo.PaymentStatus{ordervo.PaymentStatusPending}

	claimed, err := repo.ClaimProcessing(ctx, ord.OrderID(), expected, ordervo.PaymentStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, claimed)

	// A second claim on the same order must lose.
	claimed, err = repo.ClaimProcessing(ctx, ord.OrderID(), expected, ordervo.PaymentStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, claimed)

	found, err := repo.GetByOrderID(ctx, ord.OrderID())
	require.NoError(t, err)
	assert.Equal(t, ordervo.PaymentStatusConfirmed, found.PaymentStatus())
}

func TestOrderRepository_ClaimProcessing_ConcurrentDeliveries(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ord := createTestOrder(t, repo)
	ctx := context.Background()
	expected := []ordervo.PaymentStatus{ordervo.PaymentStatusPending}

	const deliveries = 8
	wins := make(chan bool, deliveries)
	var wg sync.WaitGroup
	wg.Add(deliveries)
	for i := 0; i < deliveries; i++ {
		go func() {
			defer wg.Done()
			claimed, err := repo.ClaimProcessing(ctx, ord.OrderID(), expected, ordervo.PaymentStatusConfirmed)
			if err == nil && claimed {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	assert.Equal(t, 1, won, "exactly one delivery may win the claim")
}

func TestOrderRepository_ClaimProcessing_UnknownOrder(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))

	claimed, err := repo.ClaimProcessing(context.Background(), "missing",
		[]ordervo.PaymentStatus{ordervo.PaymentStatusPending}, ordervo.PaymentStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestOrderRepository_GetIncomplete(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()

	pending := createTestOrder(t, repo)

	flagged := createTestOrder(t, repo)
	require.NoError(t, flagged.MarkConfirmed())
	flagged.SetRegistrationPending(true)
	require.NoError(t, repo.Update(ctx, flagged))

	// Confirmed but not flagged, an underpaid order waiting on the user.
	parked := createTestOrder(t, repo)
	require.NoError(t, parked.MarkConfirmed())
	require.NoError(t, repo.Update(ctx, parked))

	completed := createTestOrder(t, repo)
	require.NoError(t, completed.MarkCompleted())
	require.NoError(t, repo.Update(ctx, completed))

	incomplete, err := repo.GetIncomplete(ctx, 10)
	require.NoError(t, err)
	require.Len(t, incomplete, 1)
	assert.Equal(t, flagged.OrderID(), incomplete[0].OrderID())
	_ = pending
}

func TestOrderRepository_GetIncomplete_ParkedOrdersNeverFillTheBatch(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()

	// Older parked orders outnumbering the batch size must not push the one
	// retryable order out of the result.
	const batch = 5
	for i := 0; i < batch; i++ {
		parked := createTestOrder(t, repo)
		require.NoError(t, parked.MarkConfirmed())
		require.NoError(t, repo.Update(ctx, parked))
	}

	flagged := createTestOrder(t, repo)
	require.NoError(t, flagged.MarkConfirmed())
	flagged.SetRegistrationPending(true)
	require.NoError(t, repo.Update(ctx, flagged))

	incomplete, err := repo.GetIncomplete(ctx, batch)
	require.NoError(t, err)
	require.Len(t, incomplete, 1)
	assert.Equal(t, flagged.OrderID(), incomplete[0].OrderID())
	assert.True(t, incomplete[0].RegistrationPending())
}
