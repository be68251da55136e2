package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nomadly/internal/domain/order"
	vo "nomadly/internal/domain/order/valueobjects"
	"nomadly/internal/infrastructure/persistence/mappers"
	"nomadly/internal/infrastructure/persistence/models"
	"nomadly/internal/shared/biztime"
	"nomadly/internal/shared/db"
	apperrors "nomadly/internal/shared/errors"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	model, err := mappers.OrderToModel(o)
	if err != nil {
		return err
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	model, err := mappers.OrderToModel(o)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("order_id = ?", model.OrderID).
		Updates(map[string]interface{}{
			"payment_address":      model.PaymentAddress,
			"required_crypto":      model.RequiredCrypto,
			"payment_status":       model.PaymentStatus,
			"registration_pending": model.RegistrationPending,
			"metadata":             model.Metadata,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	return nil
}

func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	var model models.OrderModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return mappers.OrderToDomain(&model)
}

// ClaimProcessing is a conditional status update: the row moves to next only
// if its current payment_status is still in expected. RowsAffected tells the
// caller whether this delivery won the claim. This is what keeps duplicate
// webhook deliveries from both running the orchestrator.
func (r *OrderRepository) ClaimProcessing(ctx context.Context, orderID string, expected []vo.PaymentStatus, next vo.PaymentStatus) (bool, error) {
	statuses := make([]string, len(expected))
	for i, s := range expected {
		statuses[i] = s.String()
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("order_id = ? AND payment_status IN ?", orderID, statuses).
		Updates(map[string]interface{}{
			"payment_status": next.String(),
			"updated_at":     biztime.NowUTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim order: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetIncomplete selects only rows flagged registration_pending. Confirmed
// orders parked for other reasons (underpayment, manual reconciliation) can
// accumulate without bound; filtering in the query keeps them from crowding
// genuinely retryable orders out of the batch.
func (r *OrderRepository) GetIncomplete(ctx context.Context, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []models.OrderModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("payment_status = ? AND registration_pending = ?", vo.PaymentStatusConfirmed.String(), true).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete orders: %w", err)
	}

	orders := make([]*order.Order, 0, len(rows))
	for i := range rows {
		o, err := mappers.OrderToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
