package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// STATUS
// ============================================================================

// Status is the lifecycle position of a sales record.
type Status string

const (
	StatusQuotation Status = "QUOTATION"
	StatusInvoiced  Status = "INVOICED"
	StatusShipped   Status = "SHIPPED"
	StatusPaid      Status = "PAID"
	// StatusDelivered only arrives through the legacy ledger import.
	StatusDelivered Status = "DELIVERED"
)

var statusRank = map[Status]int{
	StatusQuotation: 0,
	StatusInvoiced:  1,
	StatusShipped:   2,
	StatusPaid:      3,
	StatusDelivered: 3,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank orders statuses along the lifecycle. Unknown statuses rank -1.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusDelivered
}

// CountsAsRevenue reports whether records in s are recognised as revenue.
func (s Status) CountsAsRevenue() bool {
	return s == StatusPaid || s == StatusDelivered
}

// PaymentMethod is how the customer settles the record.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentCOD        PaymentMethod = "COD"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
)

// IsValid reports whether m is a supported payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCOD, PaymentCreditCard:
		return true
	}
	return false
}

// ============================================================================
// RECORD
// ============================================================================

// LineItem is one product line of a sales record.
type LineItem struct {
	ProductID    string          `json:"product_id" validate:"required"`
	ProductLabel string          `json:"product_label"`
	Packaging    string          `json:"packaging,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// LineTotal returns quantity times unit price.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TotalOf sums the line totals of items.
func TotalOf(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Record is one commercial transaction from quotation through payment.
type Record struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Items         []LineItem      `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        Status          `json:"status"`
	DateCreated   time.Time       `json:"date_created"`
	InvoiceID     string          `json:"invoice_id"`
}

// ConsistentTotal reports whether TotalAmount matches the line items.
func (r Record) ConsistentTotal() bool {
	return r.TotalAmount.Equal(TotalOf(r.Items))
}

// CustomerSnapshot is the customer data denormalized onto a record at creation.
type CustomerSnapshot struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// ============================================================================
// INPUTS
// ============================================================================

// CreateInput describes a new sales record.
type CreateInput struct {
	CustomerID     string
	Items          []LineItem
	PaymentMethod  PaymentMethod
	InitialStatus  Status
	IdempotencyKey string
	Actor          string
}

// TransitionInput requests a status change.
type TransitionInput struct {
	SaleID    string
	Target    Status
	Confirmed bool
	Actor     string
}
