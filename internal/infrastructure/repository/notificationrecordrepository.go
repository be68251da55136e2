package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nomadly/internal/domain/notification"
	"nomadly/internal/infrastructure/persistence/mappers"
	"nomadly/internal/infrastructure/persistence/models"
	"nomadly/internal/shared/db"
	apperrors "nomadly/internal/shared/errors"
)

type NotificationRecordRepository struct {
	db *gorm.DB
}

func NewNotificationRecordRepository(db *gorm.DB) *NotificationRecordRepository {
	return &NotificationRecordRepository{db: db}
}

func (r *NotificationRecordRepository) Save(ctx context.Context, rec *notification.Record) error {
	model := mappers.NotificationRecordToModel(rec)
	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save notification record: %w", err)
	}
	rec.SetID(model.ID)
	return nil
}

func (r *NotificationRecordRepository) GetByOrderChannelKind(ctx context.Context, orderID string, channel notification.Channel, kind string) (*notification.Record, error) {
	var model models.NotificationRecordModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ? AND channel = ? AND kind = ?", orderID, channel.String(), kind).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("notification record not found")
		}
		return nil, fmt.Errorf("failed to get notification record: %w", err)
	}
	return mappers.NotificationRecordToDomain(&model)
}

func (r *NotificationRecordRepository) ListByOrder(ctx context.Context, orderID string) ([]*notification.Record, error) {
	var rows []models.NotificationRecordModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notification records: %w", err)
	}

	records := make([]*notification.Record, 0, len(rows))
	for i := range rows {
		rec, err := mappers.NotificationRecordToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
