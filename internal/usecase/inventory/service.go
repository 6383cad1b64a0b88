package inventory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"terminal-inventory/internal/domain/customer"
	"terminal-inventory/internal/domain/device"
	"terminal-inventory/internal/logger"
	appErrors "terminal-inventory/pkg/errors"
	"terminal-inventory/pkg/utils"
)

// Service is the single source of truth for the device collection. It
// keeps an in-memory snapshot mirroring the database so the API serves
// reads without re-fetching; every mutation goes to the repository first
// and touches the snapshot only after persistence confirms, so the
// mirror never runs ahead of the store.
type Service struct {
	deviceRepo   device.Repository
	customerRepo customer.Repository

	mu       sync.RWMutex
	snapshot []*device.Device
	loaded   bool
}

func NewService(deviceRepo device.Repository, customerRepo customer.Repository) *Service {
	return &Service{
		deviceRepo:   deviceRepo,
		customerRepo: customerRepo,
	}
}

// ensureLoaded populates the snapshot from the repository on first use.
func (s *Service) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	devices, err := s.deviceRepo.List(ctx)
	if err != nil {
		return storeError(err)
	}

	s.mu.Lock()
	if !s.loaded {
		s.snapshot = devices
		s.loaded = true
	}
	s.mu.Unlock()
	return nil
}

// findLocked returns the snapshot entry for deviceID. Callers must hold s.mu.
func (s *Service) findLocked(deviceID uuid.UUID) *device.Device {
	for _, d := range s.snapshot {
		if d.ID == deviceID {
			return d
		}
	}
	return nil
}

func (s *Service) ListDevices(ctx context.Context, req *ListDevicesRequest) (*DeviceListResponse, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	// Value copies, so sorting and rendering below run outside the lock
	// without touching entries a writer may be mutating.
	s.mu.RLock()
	filtered := make([]*device.Device, 0, len(s.snapshot))
	for _, d := range s.snapshot {
		if matchesFilter(d, req) {
			clone := *d
			filtered = append(filtered, &clone)
		}
	}
	s.mu.RUnlock()

	device.SortForDisplay(filtered)

	responses := make([]DeviceResponse, len(filtered))
	for i, d := range filtered {
		responses[i] = *ToDeviceResponse(d)
	}

	return &DeviceListResponse{
		Devices: responses,
		Total:   len(responses),
	}, nil
}

func matchesFilter(d *device.Device, req *ListDevicesRequest) bool {
	if req == nil {
		return true
	}
	if req.Available != nil && d.Available() != *req.Available {
		return false
	}
	if req.Reason != nil {
		if d.RemovalReason == nil || string(*d.RemovalReason) != *req.Reason {
			return false
		}
	}
	if req.Search != "" {
		search := strings.ToLower(req.Search)
		if !strings.Contains(strings.ToLower(d.ModelName), search) &&
			!strings.Contains(strings.ToLower(d.SerialNumber), search) &&
			!(d.CustomerInfo != nil && strings.Contains(strings.ToLower(d.CustomerInfo.Name), search)) {
			return false
		}
	}
	return true
}

func (s *Service) GetDevice(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	d := s.findLocked(deviceID)
	if d == nil {
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "Device not found", device.ErrDeviceNotFound)
	}
	return ToDeviceResponse(d), nil
}

func (s *Service) AddDevice(ctx context.Context, req *CreateDeviceRequest) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	modelName := utils.SanitizeString(req.ModelName)
	serial := strings.TrimSpace(req.SerialNumber)
	if modelName == "" {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "model name is empty", nil)
	}
	if serial == "" {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "serial number is empty", nil)
	}

	d := &device.Device{
		ModelName:    modelName,
		SerialNumber: serial,
		EntryDate:    req.EntryDate,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deviceRepo.Create(ctx, d); err != nil {
		return nil, storeError(err)
	}
	s.snapshot = append(s.snapshot, d)

	logger.Info("Device added to inventory",
		zap.String("device_id", d.ID.String()),
		zap.String("serial_number", d.SerialNumber),
		zap.String("model", d.ModelName),
		zap.String("event", "device_added"),
	)

	return ToDeviceResponse(d), nil
}

func (s *Service) AddDevicesBatch(ctx context.Context, req *BatchCreateDevicesRequest) (*BatchCreateResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}
	if err := ValidateSerialBatch(req.SerialNumbers); err != nil {
		return nil, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	modelName := utils.SanitizeString(req.ModelName)
	if modelName == "" {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "model name is empty", nil)
	}
	devices := make([]*device.Device, len(req.SerialNumbers))
	for i, serial := range req.SerialNumbers {
		devices[i] = &device.Device{
			ModelName:    modelName,
			SerialNumber: strings.TrimSpace(serial),
			EntryDate:    req.EntryDate,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deviceRepo.CreateBatch(ctx, devices); err != nil {
		return nil, storeError(err)
	}
	s.snapshot = append(s.snapshot, devices...)

	logger.Info("Device batch added to inventory",
		zap.String("model", modelName),
		zap.Int("count", len(devices)),
		zap.String("event", "device_batch_added"),
	)

	return &BatchCreateResponse{CreatedCount: len(devices)}, nil
}

func (s *Service) CheckoutDevice(ctx context.Context, deviceID uuid.UUID, req *CheckoutDeviceRequest) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}
	reason, err := ParseReason(req.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findLocked(deviceID)
	if d == nil {
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "Device not found", device.ErrDeviceNotFound)
	}
	if !d.Available() {
		return nil, appErrors.NewAppError(appErrors.CodeInvalidState, "Device is already checked out", device.ErrAlreadyCheckedOut)
	}

	// Resolve-or-create the customer first, then update the device row.
	// The two steps are not one transaction: a failure in between leaves
	// a customer row without a checkout, which the unique identity index
	// deduplicates on the next attempt.
	cust, err := s.customerRepo.ResolveOrCreate(ctx, req.Customer.toCustomerInfo())
	if err != nil {
		return nil, storeError(err)
	}
	if err := s.deviceRepo.Checkout(ctx, d.ID, req.ExitDate, reason, cust.ID); err != nil {
		return nil, storeError(err)
	}
	d.MarkCheckedOut(req.ExitDate, reason, cust.ID, cust.Info)

	logger.Info("Device checked out",
		zap.String("device_id", d.ID.String()),
		zap.String("reason", string(reason)),
		zap.String("customer", cust.Name),
		zap.String("event", "device_checked_out"),
	)

	return ToDeviceResponse(d), nil
}

func (s *Service) CheckoutDevicesBatch(ctx context.Context, req *BatchCheckoutRequest) (*BulkOperationResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}
	reason, err := ParseReason(req.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cust, err := s.customerRepo.ResolveOrCreate(ctx, req.Customer.toCustomerInfo())
	if err != nil {
		return nil, storeError(err)
	}

	// Best effort per device: one bad id does not abort the rest.
	response := &BulkOperationResponse{Errors: []BulkError{}}
	for _, deviceID := range req.DeviceIDs {
		d := s.findLocked(deviceID)
		switch {
		case d == nil:
			response.FailedCount++
			response.Errors = append(response.Errors, BulkError{DeviceID: deviceID, Error: device.ErrDeviceNotFound.Error()})
		case !d.Available():
			response.FailedCount++
			response.Errors = append(response.Errors, BulkError{DeviceID: deviceID, Error: device.ErrAlreadyCheckedOut.Error()})
		default:
			if err := s.deviceRepo.Checkout(ctx, d.ID, req.ExitDate, reason, cust.ID); err != nil {
				response.FailedCount++
				response.Errors = append(response.Errors, BulkError{DeviceID: deviceID, Error: err.Error()})
				continue
			}
			d.MarkCheckedOut(req.ExitDate, reason, cust.ID, cust.Info)
			response.SuccessCount++
		}
	}

	logger.Info("Batch checkout completed",
		zap.Int("success", response.SuccessCount),
		zap.Int("failed", response.FailedCount),
		zap.String("reason", string(reason)),
		zap.String("event", "device_batch_checked_out"),
	)

	return response, nil
}

func (s *Service) ReturnDevice(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findLocked(deviceID)
	if d == nil {
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "Device not found", device.ErrDeviceNotFound)
	}
	if d.Available() {
		return nil, appErrors.NewAppError(appErrors.CodeInvalidState, "Device is already in inventory", device.ErrNotCheckedOut)
	}

	if err := s.deviceRepo.Return(ctx, d.ID); err != nil {
		return nil, storeError(err)
	}
	d.MarkReturned()

	logger.Info("Device returned to inventory",
		zap.String("device_id", d.ID.String()),
		zap.String("event", "device_returned"),
	)

	return ToDeviceResponse(d), nil
}

func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	stats := device.ComputeStats(s.snapshot)
	s.mu.RUnlock()

	return toStatsResponse(stats), nil
}

func (s *Service) Models(ctx context.Context) ([]ModelSummaryResponse, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	summaries := device.ModelSummaries(s.snapshot)
	s.mu.RUnlock()

	responses := make([]ModelSummaryResponse, len(summaries))
	for i, m := range summaries {
		responses[i] = ModelSummaryResponse{
			ID:             m.ID,
			Name:           m.Name,
			TotalCount:     m.TotalCount,
			AvailableCount: m.AvailableCount,
		}
	}
	return responses, nil
}

func (s *Service) DevicesByCustomer(ctx context.Context, reasonValue string) ([]CustomerGroupResponse, error) {
	reason, err := ParseReason(reasonValue)
	if err != nil {
		return nil, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	groups := device.GroupByCustomer(s.snapshot, reason)
	responses := make([]CustomerGroupResponse, len(groups))
	for i, g := range groups {
		devices := make([]DeviceResponse, len(g.Devices))
		for j, d := range g.Devices {
			devices[j] = *ToDeviceResponse(d)
		}
		responses[i] = CustomerGroupResponse{
			Customer: toCustomerResponse(g.Customer),
			Devices:  devices,
		}
	}
	s.mu.RUnlock()

	return responses, nil
}

// storeError maps repository failures into the API error taxonomy.
// Anything that is not a recognized domain condition counts as the
// store being unavailable.
func storeError(err error) error {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, device.ErrDuplicateSerial):
		return appErrors.NewAppError(appErrors.CodeDuplicateSerial, "Device with this serial number already exists", err)
	case errors.Is(err, device.ErrDeviceNotFound):
		return appErrors.NewAppError(appErrors.CodeNotFound, "Device not found", err)
	case errors.Is(err, device.ErrAlreadyCheckedOut):
		return appErrors.NewAppError(appErrors.CodeInvalidState, "Device is already checked out", err)
	case errors.Is(err, device.ErrNotCheckedOut):
		return appErrors.NewAppError(appErrors.CodeInvalidState, "Device is already in inventory", err)
	}
	return appErrors.NewAppError(appErrors.CodePersistence, "Inventory store unavailable", err)
}
