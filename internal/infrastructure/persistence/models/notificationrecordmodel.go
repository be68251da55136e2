package models

import "time"

// NotificationRecordModel is unique per order, channel and outcome kind so
// the dispatcher can dedupe terminal notifications.
type NotificationRecordModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"uniqueIndex:idx_notif_order_channel_kind;size:32;not null"`
	OwnerID   int64  `gorm:"index;not null"`
	Channel   string `gorm:"uniqueIndex:idx_notif_order_channel_kind;size:10;not null"`
	Kind      string `gorm:"uniqueIndex:idx_notif_order_channel_kind;size:40;not null"`
	Status    string `gorm:"size:10;not null"`
	Attempts  int    `gorm:"default:0"`
	LastError string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NotificationRecordModel) TableName() string {
	return "notification_records"
}
