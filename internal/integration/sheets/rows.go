package sheets

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mycoledger/mycoledger/internal/costing"
	"github.com/mycoledger/mycoledger/internal/sales"
	"github.com/mycoledger/mycoledger/internal/shared"
)

// Sales sheet columns.
const (
	colSaleID = iota
	colSaleDate
	colSaleCustomerID
	colSaleCustomerName
	colSaleCustomerEmail
	colSaleCustomerPhone
	colSaleItems
	colSaleTotal
	colSalePayment
	colSaleStatus
	colSaleInvoice
	saleColumns
)

// DailyCosts sheet columns.
const (
	colCostID = iota
	colCostDate
	colCostReference
	colCostWeight
	colCostHours
	colCostRaw
	colCostPackaging
	colCostLabor
	colCostWastage
	colCostTotal
	costColumns
)

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "02/01/2006"}

// RowError reports an unusable spreadsheet row. Row is 1-based within the range.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// ParseSaleRow converts one Sales row. The status is kept exactly as written,
// DELIVERED included.
func ParseSaleRow(n int, row []interface{}) (sales.Record, error) {
	cells := pad(row, saleColumns)
	id := cell(cells, colSaleID)
	if id == "" {
		return sales.Record{}, &RowError{Row: n, Reason: "missing id"}
	}
	created, err := parseDate(cell(cells, colSaleDate))
	if err != nil {
		return sales.Record{}, &RowError{Row: n, Reason: err.Error()}
	}
	status := sales.Status(strings.ToUpper(cell(cells, colSaleStatus)))
	if !status.IsValid() {
		return sales.Record{}, &RowError{Row: n, Reason: fmt.Sprintf("unknown status %q", cell(cells, colSaleStatus))}
	}
	var items []sales.LineItem
	if raw := cell(cells, colSaleItems); raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return sales.Record{}, &RowError{Row: n, Reason: "items: " + err.Error()}
		}
	}
	total := amount(cells, colSaleTotal)
	if cell(cells, colSaleTotal) == "" {
		total = sales.TotalOf(items)
	}
	return sales.Record{
		ID:            id,
		CustomerID:    cell(cells, colSaleCustomerID),
		CustomerName:  cell(cells, colSaleCustomerName),
		CustomerEmail: cell(cells, colSaleCustomerEmail),
		CustomerPhone: cell(cells, colSaleCustomerPhone),
		Items:         items,
		TotalAmount:   total,
		PaymentMethod: sales.PaymentMethod(strings.ToUpper(cell(cells, colSalePayment))),
		Status:        status,
		DateCreated:   created,
		InvoiceID:     cell(cells, colSaleInvoice),
	}, nil
}

// ParseCostRow converts one DailyCosts row. Blank numbers read as zero.
func ParseCostRow(n int, row []interface{}) (costing.DailyCostMetric, error) {
	cells := pad(row, costColumns)
	id := cell(cells, colCostID)
	if id == "" {
		return costing.DailyCostMetric{}, &RowError{Row: n, Reason: "missing id"}
	}
	date, err := parseDate(cell(cells, colCostDate))
	if err != nil {
		return costing.DailyCostMetric{}, &RowError{Row: n, Reason: err.Error()}
	}
	return costing.DailyCostMetric{
		ID:              id,
		Date:            date,
		ReferenceID:     cell(cells, colCostReference),
		WeightProcessed: amount(cells, colCostWeight),
		ProcessingHours: amount(cells, colCostHours),
		RawMaterialCost: amount(cells, colCostRaw),
		PackagingCost:   amount(cells, colCostPackaging),
		LaborCost:       amount(cells, colCostLabor),
		WastageCost:     amount(cells, colCostWastage),
		TotalCost:       amount(cells, colCostTotal),
	}, nil
}

func pad(row []interface{}, n int) []interface{} {
	if len(row) >= n {
		return row
	}
	out := make([]interface{}, n)
	copy(out, row)
	return out
}

func cell(row []interface{}, i int) string {
	switch v := row[i].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func amount(row []interface{}, i int) decimal.Decimal {
	return shared.ParseAmount(cell(row, i))
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}
