package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnitPrice is offered for finished goods without a selling price.
var DefaultUnitPrice = decimal.NewFromInt(15)

var (
	// ErrInvalidQuantity occurs when a reservation quantity is not positive.
	ErrInvalidQuantity = errors.New("inventory: quantity must be greater than zero")
	// ErrProductNotFound occurs when a finished good does not exist.
	ErrProductNotFound = errors.New("inventory: finished good not found")
	// ErrInsufficientStock occurs when a reservation cannot be satisfied.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrSaleRequired occurs when a reservation is not tied to a sale.
	ErrSaleRequired = errors.New("inventory: sale id required")
)

// FinishedGood is one packed production batch ready for sale.
type FinishedGood struct {
	ID            string          `json:"id" db:"id"`
	RecipeName    string          `json:"recipe_name" db:"recipe_name"`
	PackagingType string          `json:"packaging_type" db:"packaging_type"`
	Quantity      int             `json:"quantity" db:"quantity"`
	SellingPrice  decimal.Decimal `json:"selling_price" db:"selling_price"`
	ProducedAt    time.Time       `json:"produced_at" db:"produced_at"`
}

// GroupKey identifies interchangeable batches.
func (g FinishedGood) GroupKey() string {
	return g.RecipeName + "|" + g.PackagingType
}

// Label is the human readable product name.
func (g FinishedGood) Label() string {
	return fmt.Sprintf("%s (%s)", g.RecipeName, g.PackagingType)
}

// StockLevel is the on-hand quantity of one finished good.
type StockLevel struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AvailableGood groups batches sharing recipe and packaging for the sales picker.
type AvailableGood struct {
	Key      string          `json:"key"`
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	TotalQty int             `json:"total_qty"`
	Price    decimal.Decimal `json:"price"`
}

// Item is a raw material or packaging stock line.
type Item struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Type      string          `json:"type" db:"type"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Threshold int             `json:"threshold" db:"threshold"`
	Unit      string          `json:"unit" db:"unit"`
	UnitCost  decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	Supplier  string          `json:"supplier,omitempty" db:"supplier"`
}

// ReservationLine requests quantity of a finished good for a sale.
type ReservationLine struct {
	ProductID string
	Quantity  int
}

// Reservation is a persisted allocation of one batch to a sale.
type Reservation struct {
	SaleID   string
	GoodID   string
	Quantity int
}

// Shortfall explains why a line could not be reserved.
type Shortfall struct {
	ProductID string `json:"product_id"`
	Label     string `json:"label"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// Missing returns the quantity that would need restocking.
func (s Shortfall) Missing() int {
	return s.Requested - s.Available
}

// InsufficientStockError lists every line that could not be reserved.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s requested %d available %d", s.ProductID, s.Requested, s.Available))
	}
	return "inventory: insufficient stock: " + strings.Join(parts, "; ")
}

// Is matches ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
