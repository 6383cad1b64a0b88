package inventory

import (
	"fmt"
	"strings"

	"terminal-inventory/internal/domain/device"
	appErrors "terminal-inventory/pkg/errors"
)

// ValidateSerialBatch checks that every serial number in a batch is
// non-blank and that the batch contains no internal duplicates. It runs
// before any persistence call so a bad batch persists nothing.
func ValidateSerialBatch(serials []string) error {
	seen := make(map[string]struct{}, len(serials))
	for i, serial := range serials {
		serial = strings.TrimSpace(serial)
		if serial == "" {
			return appErrors.NewAppError(appErrors.CodeValidation,
				fmt.Sprintf("serial number at position %d is empty", i+1), nil)
		}
		if _, dup := seen[serial]; dup {
			return appErrors.NewAppError(appErrors.CodeValidation,
				fmt.Sprintf("duplicate serial number %q in batch", serial), nil)
		}
		seen[serial] = struct{}{}
	}
	return nil
}

// ParseReason converts the wire value into a removal reason.
func ParseReason(reason string) (device.RemovalReason, error) {
	r := device.RemovalReason(reason)
	if !r.Valid() {
		return "", appErrors.NewAppError(appErrors.CodeValidation,
			fmt.Sprintf("unknown removal reason %q", reason), device.ErrInvalidReason)
	}
	return r, nil
}
