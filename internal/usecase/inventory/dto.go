package inventory

import (
	"time"

	"github.com/google/uuid"

	"terminal-inventory/internal/domain/customer"
	"terminal-inventory/internal/domain/device"
	"terminal-inventory/pkg/utils"
)

type CreateDeviceRequest struct {
	ModelName    string    `json:"model_name" validate:"required,min=1,max=100"`
	SerialNumber string    `json:"serial_number" validate:"required,min=1,max=100"`
	EntryDate    time.Time `json:"entry_date" validate:"required"`
}

type BatchCreateDevicesRequest struct {
	ModelName     string    `json:"model_name" validate:"required,min=1,max=100"`
	SerialNumbers []string  `json:"serial_numbers" validate:"required,min=1,max=500"`
	EntryDate     time.Time `json:"entry_date" validate:"required"`
}

type CustomerInfoRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	TerminalID  string `json:"terminal_id" validate:"omitempty,max=100"`
	Email       string `json:"email" validate:"omitempty,email,max=200"`
	Phone       string `json:"phone" validate:"omitempty,max=50"`
	AccountCode string `json:"account_code" validate:"omitempty,max=100"`
}

type CheckoutDeviceRequest struct {
	ExitDate time.Time           `json:"exit_date" validate:"required"`
	Reason   string              `json:"reason" validate:"required,oneof=rental loan sale development"`
	Customer CustomerInfoRequest `json:"customer" validate:"required"`
}

type BatchCheckoutRequest struct {
	DeviceIDs []uuid.UUID         `json:"device_ids" validate:"required,min=1"`
	ExitDate  time.Time           `json:"exit_date" validate:"required"`
	Reason    string              `json:"reason" validate:"required,oneof=rental loan sale development"`
	Customer  CustomerInfoRequest `json:"customer" validate:"required"`
}

type ListDevicesRequest struct {
	Search    string  `form:"search"`
	Reason    *string `form:"reason"`
	Available *bool   `form:"available"`
}

type CustomerResponse struct {
	Name        string `json:"name"`
	TerminalID  string `json:"terminal_id"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AccountCode string `json:"account_code"`
}

type DeviceResponse struct {
	ID            uuid.UUID         `json:"id"`
	ModelName     string            `json:"model_name"`
	SerialNumber  string            `json:"serial_number"`
	EntryDate     time.Time         `json:"entry_date"`
	ExitDate      *time.Time        `json:"exit_date"`
	RemovalReason *string           `json:"removal_reason"`
	Customer      *CustomerResponse `json:"customer,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type DeviceListResponse struct {
	Devices []DeviceResponse `json:"devices"`
	Total   int              `json:"total"`
}

type BatchCreateResponse struct {
	CreatedCount int `json:"created_count"`
}

type BulkOperationResponse struct {
	SuccessCount int         `json:"success_count"`
	FailedCount  int         `json:"failed_count"`
	Errors       []BulkError `json:"errors,omitempty"`
}

type BulkError struct {
	DeviceID uuid.UUID `json:"device_id"`
	Error    string    `json:"error"`
}

type StatsResponse struct {
	TotalDevices       int `json:"total_devices"`
	AvailableDevices   int `json:"available_devices"`
	RentedDevices      int `json:"rented_devices"`
	LoanedDevices      int `json:"loaned_devices"`
	SoldDevices        int `json:"sold_devices"`
	DevelopmentDevices int `json:"development_devices"`
}

type ModelSummaryResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	TotalCount     int    `json:"total_count"`
	AvailableCount int    `json:"available_count"`
}

type CustomerGroupResponse struct {
	Customer CustomerResponse `json:"customer"`
	Devices  []DeviceResponse `json:"devices"`
}

func ToDeviceResponse(d *device.Device) *DeviceResponse {
	resp := &DeviceResponse{
		ID:           d.ID,
		ModelName:    d.ModelName,
		SerialNumber: d.SerialNumber,
		EntryDate:    d.EntryDate,
		ExitDate:     d.ExitDate,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.RemovalReason != nil {
		reason := string(*d.RemovalReason)
		resp.RemovalReason = &reason
	}
	if d.CustomerInfo != nil {
		cust := toCustomerResponse(*d.CustomerInfo)
		resp.Customer = &cust
	}
	return resp
}

func toCustomerResponse(info customer.Info) CustomerResponse {
	return CustomerResponse{
		Name:        info.Name,
		TerminalID:  info.TerminalID,
		Email:       info.Email,
		Phone:       info.Phone,
		AccountCode: info.AccountCode,
	}
}

func toStatsResponse(stats device.Stats) *StatsResponse {
	return &StatsResponse{
		TotalDevices:       stats.TotalDevices,
		AvailableDevices:   stats.AvailableDevices,
		RentedDevices:      stats.RentedDevices,
		LoanedDevices:      stats.LoanedDevices,
		SoldDevices:        stats.SoldDevices,
		DevelopmentDevices: stats.DevelopmentDevices,
	}
}

// toCustomerInfo maps the request into the domain identity, sanitizing
// each field before it is used for exact-tuple matching.
func (r CustomerInfoRequest) toCustomerInfo() customer.Info {
	return customer.Info{
		Name:        utils.SanitizeString(r.Name),
		TerminalID:  utils.SanitizeString(r.TerminalID),
		Email:       utils.SanitizeEmail(r.Email),
		Phone:       utils.SanitizePhone(r.Phone),
		AccountCode: utils.SanitizeString(r.AccountCode),
	}
}
