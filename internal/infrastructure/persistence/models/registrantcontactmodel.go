package models

import "time"

type RegistrantContactModel struct {
	ID           uint   `gorm:"primaryKey"`
	OwnerID      int64  `gorm:"uniqueIndex;not null"`
	Handle       string `gorm:"size:64;not null"`
	ContactEmail string `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (RegistrantContactModel) TableName() string {
	return "registrant_contacts"
}
