package sales

import (
	"context"
	"errors"

	"github.com/mycoledger/mycoledger/internal/inventory"
)

// InventoryReserver adapts the inventory service to StockReserver.
type InventoryReserver struct {
	inventory *inventory.Service
}

// NewInventoryReserver wraps svc.
func NewInventoryReserver(svc *inventory.Service) *InventoryReserver {
	return &InventoryReserver{inventory: svc}
}

// Reserve implements StockReserver.
func (r *InventoryReserver) Reserve(ctx context.Context, saleID string, items []LineItem) (bool, error) {
	lines := make([]inventory.ReservationLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, inventory.ReservationLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	created, err := r.inventory.Reserve(ctx, saleID, lines)
	var stockErr *inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		return false, &InsufficientStockError{Shortfalls: stockErr.Shortfalls}
	}
	return created, err
}

// Release implements StockReserver.
func (r *InventoryReserver) Release(ctx context.Context, saleID string) error {
	return r.inventory.Release(ctx, saleID)
}
