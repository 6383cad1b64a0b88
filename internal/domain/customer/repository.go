package customer

import "context"

// Repository defines the persistence contract for customer identities.
type Repository interface {
	// ResolveOrCreate returns the customer whose five-field identity matches
	// info exactly, creating the record when no match exists.
	ResolveOrCreate(ctx context.Context, info Info) (*Customer, error)
}
