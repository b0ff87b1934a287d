package documents

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
	"github.com/mycoledger/mycoledger/internal/sales"
)

// DocumentType is the commercial paper a sales record can be shown as.
type DocumentType string

const (
	TypeQuotation DocumentType = "QUOTATION"
	TypeInvoice   DocumentType = "INVOICE"
	TypeDO        DocumentType = "DO"
	TypeReceipt   DocumentType = "RECEIPT"
)

// AllTypes lists document types in lifecycle order.
var AllTypes = []DocumentType{TypeQuotation, TypeInvoice, TypeDO, TypeReceipt}

// ParseType accepts a type name in any case.
func ParseType(raw string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := layouts[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDocumentType, raw)
	}
	return t, nil
}

var (
	ErrUnknownDocumentType = fmt.Errorf("unknown document type: %w", httpx.ErrValidation)
	ErrNotViewable         = errors.New("document not viewable")
)

// NotViewableError reports a document requested before the record reached
// the status that produces it.
type NotViewableError struct {
	Type   DocumentType
	Status sales.Status
}

func (e *NotViewableError) Error() string {
	return fmt.Sprintf("%s is not available while the sale is %s", e.Type, e.Status)
}

func (e *NotViewableError) Is(target error) bool { return target == ErrNotViewable }

func (e *NotViewableError) ProblemStatus() int   { return http.StatusConflict }
func (e *NotViewableError) ProblemTitle() string { return "Document Not Available" }

func (e *NotViewableError) ProblemExtensions() map[string]any {
	return map[string]any{"type": e.Type, "status": e.Status}
}

// Layout is the field visibility of one document type.
type Layout struct {
	Title              string
	SubtitleSuffix     string
	PartyLabel         string
	AccentColor        string
	ShowPrices         bool
	ShowLineTotals     bool
	ShowTotal          bool
	ShowSignatureBlock bool
	ShowValidUntil     bool
	ShowPaymentTerms   bool
	PaidMarker         string
}

var layouts = map[DocumentType]Layout{
	TypeQuotation: {
		Title:          "QUOTATION",
		SubtitleSuffix: " (Estimate)",
		PartyLabel:     "Bill To",
		AccentColor:    "#7e22ce",
		ShowPrices:     true,
		ShowLineTotals: true,
		ShowTotal:      true,
		ShowValidUntil: true,
	},
	TypeInvoice: {
		Title:            "INVOICE",
		PartyLabel:       "Bill To",
		AccentColor:      "#1e293b",
		ShowPrices:       true,
		ShowLineTotals:   true,
		ShowTotal:        true,
		ShowPaymentTerms: true,
	},
	TypeDO: {
		Title:              "DELIVERY ORDER",
		PartyLabel:         "Ship To",
		AccentColor:        "#1d4ed8",
		ShowSignatureBlock: true,
	},
	TypeReceipt: {
		Title:          "RECEIPT",
		PartyLabel:     "Bill To",
		AccentColor:    "#15803d",
		ShowPrices:     true,
		ShowLineTotals: true,
		ShowTotal:      true,
		PaidMarker:     "PAID IN FULL",
	},
}

// LayoutFor returns the layout of t.
func LayoutFor(t DocumentType) (Layout, bool) {
	l, ok := layouts[t]
	return l, ok
}

// Company is the issuer printed in the document header.
type Company struct {
	Name    string   `json:"name"`
	Address []string `json:"address"`
}

// DefaultCompany is used when no issuer is configured.
var DefaultCompany = Company{Name: "ShroomTrack ERP", Address: []string{"123 Industrial Park", "Kuala Lumpur, 50000"}}

// Party is the customer block.
type Party struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Line is one rendered line item. Price fields are nil when hidden.
type Line struct {
	Item      string           `json:"item"`
	Packaging string           `json:"packaging,omitempty"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	LineTotal *decimal.Decimal `json:"line_total,omitempty"`
}

// Signature is the delivery order signature block.
type Signature struct {
	AuthorizedBy string `json:"authorized_by"`
	ReceivedBy   string `json:"received_by"`
}

// View is a fully resolved document ready to render.
type View struct {
	Type         DocumentType     `json:"type"`
	Title        string           `json:"title"`
	Subtitle     string           `json:"subtitle"`
	AccentColor  string           `json:"accent_color"`
	SaleID       string           `json:"sale_id"`
	InvoiceID    string           `json:"invoice_id"`
	Status       sales.Status     `json:"status"`
	Company      Company          `json:"company"`
	Party        Party            `json:"party"`
	Date         time.Time        `json:"date"`
	ValidUntil   *time.Time       `json:"valid_until,omitempty"`
	PaymentTerms string           `json:"payment_terms,omitempty"`
	Lines        []Line           `json:"lines"`
	ShowPrices   bool             `json:"show_prices"`
	Total        *decimal.Decimal `json:"total,omitempty"`
	Signature    *Signature       `json:"signature,omitempty"`
	PaidMarker   string           `json:"paid_marker,omitempty"`
	Actions      []sales.Action   `json:"actions"`
}
