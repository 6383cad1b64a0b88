package errors

import "fmt"

// Error codes shared between the inventory service and the HTTP layer.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeDuplicateSerial = "DUPLICATE_SERIAL"
	CodeInvalidState    = "INVALID_STATE"
	CodeNotFound        = "DEVICE_NOT_FOUND"
	CodePersistence     = "PERSISTENCE_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
