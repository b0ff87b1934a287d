package crm

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
)

// ErrNotFound is returned when a customer id is unknown.
var ErrNotFound = fmt.Errorf("customer %w", httpx.ErrNotFound)

// CustomerType separates trade buyers from walk-in consumers.
type CustomerType string

const (
	CustomerB2B CustomerType = "B2B"
	CustomerB2C CustomerType = "B2C"
)

// Customer is a buyer in the directory.
type Customer struct {
	ID       string       `json:"id" db:"id"`
	Name     string       `json:"name" db:"name" validate:"required,max=200"`
	Email    string       `json:"email" db:"email" validate:"omitempty,email"`
	Contact  string       `json:"contact" db:"contact" validate:"omitempty,max=50"`
	Address  string       `json:"address" db:"address"`
	Type     CustomerType `json:"type" db:"type" validate:"required,oneof=B2B B2C"`
	Status   string       `json:"status" db:"status"`
	JoinDate time.Time    `json:"join_date" db:"join_date"`
}

// Filter narrows the directory listing.
type Filter struct {
	Type   CustomerType
	Search string
}

// VIPThreshold is the lifetime spend above which a customer is flagged VIP.
var VIPThreshold = decimal.NewFromInt(1000)

// Purchase is one line of a customer's history.
type Purchase struct {
	SaleID      string          `json:"sale_id"`
	InvoiceID   string          `json:"invoice_id"`
	DateCreated time.Time       `json:"date_created"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
}

// Stats summarises a customer's relationship.
type Stats struct {
	CustomerID      string          `json:"customer_id"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	OrderCount      int             `json:"order_count"`
	FavoriteProduct string          `json:"favorite_product,omitempty"`
	LastOrderDate   *time.Time      `json:"last_order_date,omitempty"`
	IsVIP           bool            `json:"is_vip"`
	History         []Purchase      `json:"history"`
}
