package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainCustomer "terminal-inventory/internal/domain/customer"
	"terminal-inventory/internal/infrastructure/database/postgres/models"
)

// CustomerRepository implements the customer domain repository over Postgres.
type CustomerRepository struct {
	db *DB
}

func NewCustomerRepository(db *DB) domainCustomer.Repository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) ResolveOrCreate(ctx context.Context, info domainCustomer.Info) (*domainCustomer.Customer, error) {
	row := models.CustomerModel{
		ID:          uuid.New(),
		Name:        info.Name,
		TerminalID:  info.TerminalID,
		Email:       info.Email,
		Phone:       info.Phone,
		AccountCode: info.AccountCode,
		CreatedAt:   time.Now(),
	}

	// Exact match on the full five-field identity; anything less is a
	// different customer.
	err := r.db.DB.WithContext(ctx).
		Where(map[string]interface{}{
			"name":         info.Name,
			"terminal_id":  info.TerminalID,
			"email":        info.Email,
			"phone":        info.Phone,
			"account_code": info.AccountCode,
		}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	return &domainCustomer.Customer{
		ID: row.ID,
		Info: domainCustomer.Info{
			Name:        row.Name,
			TerminalID:  row.TerminalID,
			Email:       row.Email,
			Phone:       row.Phone,
			AccountCode: row.AccountCode,
		},
		CreatedAt: row.CreatedAt,
	}, nil
}
