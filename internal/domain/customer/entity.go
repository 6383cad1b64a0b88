package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Info identifies the external party a device is checked out to.
// Two checkouts belong to the same customer only when all five fields
// match exactly; there is no fuzzy matching.
type Info struct {
	Name        string
	TerminalID  string
	Email       string
	Phone       string
	AccountCode string
}

// Key returns the exact-match grouping key over the five-field tuple.
func (i Info) Key() string {
	return strings.Join([]string{i.Name, i.TerminalID, i.Email, i.Phone, i.AccountCode}, "\x1f")
}

// Customer is a persisted customer identity.
type Customer struct {
	ID uuid.UUID
	Info
	CreatedAt time.Time
}
