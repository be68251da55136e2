package models

import (
	"time"

	"gorm.io/datatypes"
)

// DomainModel persists registered domains. Nameservers are stored as a JSON
// array of hostnames, encoded exactly once here at the persistence boundary.
type DomainModel struct {
	ID                 uint           `gorm:"primaryKey"`
	OwnerID            int64          `gorm:"index:idx_domains_owner_name;not null"`
	DomainName         string         `gorm:"index:idx_domains_owner_name;size:255;not null"`
	RegistrarReference string         `gorm:"size:128;not null"`
	DNSZoneID          string         `gorm:"size:64"`
	NameserverMode     string         `gorm:"size:20;not null"`
	Nameservers        datatypes.JSON `gorm:"type:json;not null"`
	Status             string         `gorm:"size:16;not null;index"`
	RegisteredAt       time.Time      `gorm:"not null"`
	ExpiresAt          time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (DomainModel) TableName() string {
	return "domains"
}
