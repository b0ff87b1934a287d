package crm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mycoledger/mycoledger/internal/sales"
	"github.com/mycoledger/mycoledger/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id string) (Customer, error)
	UpsertCustomer(ctx context.Context, c Customer) error
}

// SalesLister reads the sales ledger.
type SalesLister interface {
	List(ctx context.Context) ([]sales.Record, error)
}

// Service manages the customer directory.
type Service struct {
	repo   RepositoryPort
	ledger SalesLister
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, ledger SalesLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ledger: ledger, logger: logger}
}

// List returns customers matching f. Search is a case-insensitive name match.
func (s *Service) List(ctx context.Context, f Filter) ([]Customer, error) {
	all, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := []Customer{}
	for _, c := range all {
		if f.Type != "" && c.Type != f.Type {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Get loads one customer.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// Create validates and stores a new customer.
func (s *Service) Create(ctx context.Context, c Customer) (Customer, error) {
	if c.Type == "" {
		c.Type = CustomerB2C
	}
	if err := shared.Validator().Struct(c); err != nil {
		return Customer{}, &ValidationError{Fields: shared.FieldErrors(err)}
	}
	if c.ID == "" {
		c.ID = "cust-" + uuid.NewString()
	}
	c.Status = "ACTIVE"
	if c.JoinDate.IsZero() {
		c.JoinDate = time.Now().UTC()
	}
	if err := s.repo.UpsertCustomer(ctx, c); err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

// Stats derives spend and history for a customer.
func (s *Service) Stats(ctx context.Context, id string) (Stats, error) {
	if _, err := s.repo.GetCustomer(ctx, id); err != nil {
		return Stats{}, err
	}
	ledger, err := s.ledger.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("customer stats: %w", err)
	}
	return ComputeStats(id, ledger), nil
}
