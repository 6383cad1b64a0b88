package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceModel represents the database row for a physical terminal.
type DeviceModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ModelID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	SerialNumber  string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	EntryDate     time.Time  `gorm:"type:date;not null"`
	ExitDate      *time.Time `gorm:"type:date"`
	RemovalReason *string    `gorm:"type:varchar(20)"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`

	Model    ProductModel   `gorm:"foreignKey:ModelID;references:ID"`
	Customer *CustomerModel `gorm:"foreignKey:CustomerID;references:ID"`
}

func (DeviceModel) TableName() string {
	return "devices"
}
