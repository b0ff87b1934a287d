package procurement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error)
}

// Service exposes the purchase order ledger.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns every purchase order.
func (s *Service) List(ctx context.Context) ([]PurchaseOrder, error) {
	orders, err := s.repo.ListPurchaseOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return orders, nil
}

// Pending returns orders that have not been received yet.
func (s *Service) Pending(ctx context.Context) ([]PurchaseOrder, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []PurchaseOrder{}
	for _, po := range orders {
		if po.Status == POStatusOrdered {
			out = append(out, po)
		}
	}
	return out, nil
}

// Spend returns the procurement cost across counted orders.
func (s *Service) Spend(ctx context.Context) (decimal.Decimal, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return SpendTotal(orders), nil
}
