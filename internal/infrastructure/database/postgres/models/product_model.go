package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductModel represents the database row for a catalog model name
// shared by zero or more physical devices.
type ProductModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ProductModel) TableName() string {
	return "device_models"
}
