package mappers

import (
	"fmt"

	"nomadly/internal/domain/notification"
	"nomadly/internal/infrastructure/persistence/models"
)

func NotificationRecordToModel(r *notification.Record) *models.NotificationRecordModel {
	return &models.NotificationRecordModel{
		ID:        r.ID(),
		OrderID:   r.OrderID(),
		OwnerID:   r.OwnerID(),
		Channel:   r.Channel().String(),
		Kind:      r.Kind(),
		Status:    string(r.Status()),
		Attempts:  r.Attempts(),
		LastError: r.LastError(),
		CreatedAt: r.CreatedAt(),
		UpdatedAt: r.UpdatedAt(),
	}
}

func NotificationRecordToDomain(model *models.NotificationRecordModel) (*notification.Record, error) {
	channel := notification.Channel(model.Channel)
	if !channel.IsValid() {
		return nil, fmt.Errorf("invalid notification channel: %s", model.Channel)
	}

	return notification.Reconstruct(notification.ReconstructParams{
		ID:        model.ID,
		OrderID:   model.OrderID,
		OwnerID:   model.OwnerID,
		Channel:   channel,
		Kind:      model.Kind,
		Status:    notification.DeliveryStatus(model.Status),
		Attempts:  model.Attempts,
		LastError: model.LastError,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}), nil
}
