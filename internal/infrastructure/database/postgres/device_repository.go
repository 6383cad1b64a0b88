package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"terminal-inventory/internal/domain/customer"
	domainDevice "terminal-inventory/internal/domain/device"
	"terminal-inventory/internal/infrastructure/database/postgres/models"
)

// DeviceRepository implements the device domain repository over Postgres.
type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) domainDevice.Repository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, d *domainDevice.Device) error {
	modelID, err := r.getOrCreateModel(ctx, r.db.DB, d.ModelName)
	if err != nil {
		return err
	}

	row := &models.DeviceModel{
		ID:           uuid.New(),
		ModelID:      modelID,
		SerialNumber: d.SerialNumber,
		EntryDate:    d.EntryDate,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := r.db.DB.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainDevice.ErrDuplicateSerial
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	d.ID = row.ID
	d.CreatedAt = row.CreatedAt
	d.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *DeviceRepository) CreateBatch(ctx context.Context, devices []*domainDevice.Device) error {
	if len(devices) == 0 {
		return nil
	}

	// One transaction for the whole batch: a duplicate anywhere persists nothing.
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		modelID, err := r.getOrCreateModel(ctx, tx, devices[0].ModelName)
		if err != nil {
			return err
		}

		rows := make([]models.DeviceModel, len(devices))
		now := time.Now()
		for i, d := range devices {
			rows[i] = models.DeviceModel{
				ID:           uuid.New(),
				ModelID:      modelID,
				SerialNumber: d.SerialNumber,
				EntryDate:    d.EntryDate,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
		}

		if err := tx.Create(&rows).Error; err != nil {
			if isUniqueViolation(err) {
				return domainDevice.ErrDuplicateSerial
			}
			return fmt.Errorf("failed to create device batch: %w", err)
		}

		for i := range devices {
			devices[i].ID = rows[i].ID
			devices[i].CreatedAt = rows[i].CreatedAt
			devices[i].UpdatedAt = rows[i].UpdatedAt
		}
		return nil
	})
}

func (r *DeviceRepository) List(ctx context.Context) ([]*domainDevice.Device, error) {
	var rows []models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Preload("Model").
		Preload("Customer").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(rows))
	for i := range rows {
		devices[i] = toDeviceEntity(&rows[i])
	}
	return devices, nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	var row models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Preload("Model").
		Preload("Customer").
		Where("id = ?", deviceID).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&row), nil
}

func (r *DeviceRepository) Checkout(ctx context.Context, deviceID uuid.UUID, exitDate time.Time, reason domainDevice.RemovalReason, customerID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ? AND exit_date IS NULL", deviceID).
		Updates(map[string]interface{}{
			"exit_date":      exitDate,
			"removal_reason": string(reason),
			"customer_id":    customerID,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to check out device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Zero rows means either the id is unknown or the guard failed
		// because a concurrent writer got there first; tell them apart.
		exists, err := r.exists(ctx, deviceID)
		if err != nil {
			return fmt.Errorf("failed to check out device: %w", err)
		}
		if exists {
			return domainDevice.ErrAlreadyCheckedOut
		}
		return domainDevice.ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) Return(ctx context.Context, deviceID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ? AND exit_date IS NOT NULL", deviceID).
		Updates(map[string]interface{}{
			"exit_date":      nil,
			"removal_reason": nil,
			"customer_id":    nil,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to return device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.exists(ctx, deviceID)
		if err != nil {
			return fmt.Errorf("failed to return device: %w", err)
		}
		if exists {
			return domainDevice.ErrNotCheckedOut
		}
		return domainDevice.ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) exists(ctx context.Context, deviceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// getOrCreateModel resolves a model name to its row, inserting it on
// first sight.
func (r *DeviceRepository) getOrCreateModel(ctx context.Context, tx *gorm.DB, name string) (uuid.UUID, error) {
	row := models.ProductModel{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	err := tx.WithContext(ctx).
		Where(models.ProductModel{Name: name}).
		FirstOrCreate(&row).Error
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve device model %q: %w", name, err)
	}
	return row.ID, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value")
}

func toDeviceEntity(row *models.DeviceModel) *domainDevice.Device {
	d := &domainDevice.Device{
		ID:           row.ID,
		ModelName:    row.Model.Name,
		SerialNumber: row.SerialNumber,
		EntryDate:    row.EntryDate,
		ExitDate:     row.ExitDate,
		CustomerID:   row.CustomerID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.RemovalReason != nil {
		reason := domainDevice.RemovalReason(*row.RemovalReason)
		d.RemovalReason = &reason
	}
	if row.Customer != nil {
		d.CustomerInfo = &customer.Info{
			Name:        row.Customer.Name,
			TerminalID:  row.Customer.TerminalID,
			Email:       row.Customer.Email,
			Phone:       row.Customer.Phone,
			AccountCode: row.Customer.AccountCode,
		}
	}
	return d
}
