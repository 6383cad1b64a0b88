package device

import (
	"time"

	"github.com/google/uuid"

	"terminal-inventory/internal/domain/customer"
)

// Device represents one physical point-of-sale terminal unit.
//
// The checked-out triple (ExitDate, RemovalReason, CustomerInfo) is
// all-or-nothing: either every field is nil (the device is in inventory)
// or every field is set (the device is checked out).
type Device struct {
	ID            uuid.UUID
	ModelName     string
	SerialNumber  string
	EntryDate     time.Time
	ExitDate      *time.Time
	RemovalReason *RemovalReason
	CustomerID    *uuid.UUID
	CustomerInfo  *customer.Info
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RemovalReason is the categorical purpose of a checkout.
type RemovalReason string

const (
	ReasonRental      RemovalReason = "rental"
	ReasonLoan        RemovalReason = "loan"
	ReasonSale        RemovalReason = "sale"
	ReasonDevelopment RemovalReason = "development"
)

// Valid reports whether r is one of the recognized removal reasons.
func (r RemovalReason) Valid() bool {
	switch r {
	case ReasonRental, ReasonLoan, ReasonSale, ReasonDevelopment:
		return true
	}
	return false
}

// Available reports whether the device is currently in inventory.
func (d *Device) Available() bool {
	return d.ExitDate == nil
}

// MarkCheckedOut sets the checked-out triple. Callers must verify the
// device is available and the change is persisted before applying it.
func (d *Device) MarkCheckedOut(exitDate time.Time, reason RemovalReason, customerID uuid.UUID, info customer.Info) {
	d.ExitDate = &exitDate
	d.RemovalReason = &reason
	d.CustomerID = &customerID
	d.CustomerInfo = &info
	d.UpdatedAt = time.Now()
}

// MarkReturned clears the checked-out triple, putting the device back in
// inventory. EntryDate is never touched.
func (d *Device) MarkReturned() {
	d.ExitDate = nil
	d.RemovalReason = nil
	d.CustomerID = nil
	d.CustomerInfo = nil
	d.UpdatedAt = time.Now()
}
