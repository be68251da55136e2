package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderModel struct {
	ID                 uint            `gorm:"primaryKey"`
	OrderID            string          `gorm:"uniqueIndex;size:32;not null"`
	OwnerID            int64           `gorm:"index;not null"`
	ServiceType        string          `gorm:"size:32;not null"`
	RequestedAmountUSD decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CryptoCurrency     string          `gorm:"size:16;not null"`
	PaymentAddress     string          `gorm:"size:128"`
	RequiredCrypto     decimal.Decimal `gorm:"type:decimal(30,18)"`
	PaymentStatus      string          `gorm:"size:20;not null;index"`
	// RegistrationPending is selected on by the background retry sweep, so
	// it lives in its own indexed column instead of the metadata JSON.
	RegistrationPending bool           `gorm:"not null;default:false;index"`
	ServiceDetails      datatypes.JSON `gorm:"type:json"`
	Metadata            datatypes.JSONMap
	Version             int `gorm:"default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}
