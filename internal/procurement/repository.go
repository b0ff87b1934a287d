package procurement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists purchase orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListPurchaseOrders returns all orders, newest first.
func (r *Repository) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("procurement repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT po.id, po.item_id, COALESCE(i.name, ''), po.supplier, po.quantity, po.total_units,
	po.total_cost, po.status, COALESCE(po.complaint, ''), po.created_at
FROM purchase_orders po
LEFT JOIN inventory_items i ON i.id = po.item_id
ORDER BY po.created_at DESC, po.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []PurchaseOrder{}
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(&po.ID, &po.ItemID, &po.ItemName, &po.Supplier, &po.Quantity, &po.TotalUnits,
			&po.TotalCost, &po.Status, &po.Complaint, &po.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}
