package crm

import (
	"context"
	"errors"

	"github.com/mycoledger/mycoledger/internal/sales"
)

// SalesDirectory lets the sales service denormalise customers onto records.
type SalesDirectory struct {
	repo RepositoryPort
}

// NewSalesDirectory wraps repo.
func NewSalesDirectory(repo RepositoryPort) *SalesDirectory {
	return &SalesDirectory{repo: repo}
}

// Lookup implements sales.CustomerDirectory.
func (d *SalesDirectory) Lookup(ctx context.Context, id string) (sales.CustomerSnapshot, error) {
	c, err := d.repo.GetCustomer(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return sales.CustomerSnapshot{}, sales.ErrUnknownCustomer
	}
	if err != nil {
		return sales.CustomerSnapshot{}, err
	}
	return sales.CustomerSnapshot{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Contact}, nil
}
