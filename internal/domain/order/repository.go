package order

import (
	"context"

	vo "nomadly/internal/domain/order/valueobjects"
)

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)

	// ClaimProcessing atomically advances payment_status from one of the
	// expected statuses to next. It returns false when no row matched,
	// meaning another delivery of the same event already claimed the order.
	// This is the race-free idempotency guard for duplicate webhooks.
	ClaimProcessing(ctx context.Context, orderID string, expected []vo.PaymentStatus, next vo.PaymentStatus) (bool, error)

	// GetIncomplete returns confirmed orders flagged registration-pending,
	// oldest first, for the background retry job. Orders parked at confirmed
	// for other reasons are excluded at the query level.
	GetIncomplete(ctx context.Context, limit int) ([]*Order, error)
}
