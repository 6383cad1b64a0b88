package device

import "errors"

var (
	ErrDeviceNotFound    = errors.New("device not found")
	ErrDuplicateSerial   = errors.New("serial number already exists")
	ErrAlreadyCheckedOut = errors.New("device is already checked out")
	ErrNotCheckedOut     = errors.New("device is not checked out")
	ErrInvalidReason     = errors.New("invalid removal reason")
)
