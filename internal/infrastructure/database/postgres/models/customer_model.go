package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerModel represents the database row for a customer identity.
// The unique index spans all five identity fields: two checkouts share a
// customer row only when the whole tuple matches.
type CustomerModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_customers_identity"`
	TerminalID  string    `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_customers_identity"`
	Email       string    `gorm:"type:varchar(200);not null;default:'';uniqueIndex:idx_customers_identity"`
	Phone       string    `gorm:"type:varchar(50);not null;default:'';uniqueIndex:idx_customers_identity"`
	AccountCode string    `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_customers_identity"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (CustomerModel) TableName() string {
	return "customers"
}
