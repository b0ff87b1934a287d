package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// POStatus is the purchase order lifecycle status.
type POStatus string

const (
	POStatusOrdered   POStatus = "ORDERED"
	POStatusReceived  POStatus = "RECEIVED"
	POStatusComplaint POStatus = "COMPLAINT"
	POStatusResolved  POStatus = "RESOLVED"
)

// CountsTowardCost reports whether the order is part of procurement spend.
// Orders under complaint or resolved by refund are excluded.
func (s POStatus) CountsTowardCost() bool {
	return s == POStatusOrdered || s == POStatusReceived
}

// PurchaseOrder is a packaging or raw material order placed with a supplier.
type PurchaseOrder struct {
	ID         string          `json:"id" db:"id"`
	ItemID     string          `json:"item_id" db:"item_id"`
	ItemName   string          `json:"item_name" db:"item_name"`
	Supplier   string          `json:"supplier" db:"supplier"`
	Quantity   int             `json:"quantity" db:"quantity"`
	TotalUnits int             `json:"total_units" db:"total_units"`
	TotalCost  decimal.Decimal `json:"total_cost" db:"total_cost"`
	Status     POStatus        `json:"status" db:"status"`
	Complaint  string          `json:"complaint,omitempty" db:"complaint"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// SpendTotal sums TotalCost over orders that count toward procurement cost.
func SpendTotal(orders []PurchaseOrder) decimal.Decimal {
	total := decimal.Zero
	for _, po := range orders {
		if po.Status.CountsTowardCost() {
			total = total.Add(po.TotalCost)
		}
	}
	return total
}
