package device

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for devices.
type Repository interface {
	// List returns every device with its model name and customer info joined in.
	List(ctx context.Context) ([]*Device, error)
	GetByID(ctx context.Context, deviceID uuid.UUID) (*Device, error)
	// Create persists a new in-inventory device, assigning its ID.
	// Returns ErrDuplicateSerial when the serial number is already taken.
	Create(ctx context.Context, d *Device) error
	// CreateBatch persists all devices or none of them.
	CreateBatch(ctx context.Context, devices []*Device) error
	// Checkout sets the checked-out triple on the device row.
	Checkout(ctx context.Context, deviceID uuid.UUID, exitDate time.Time, reason RemovalReason, customerID uuid.UUID) error
	// Return clears the checked-out triple on the device row.
	Return(ctx context.Context, deviceID uuid.UUID) error
}
