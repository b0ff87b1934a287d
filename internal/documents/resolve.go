package documents

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mycoledger/mycoledger/internal/sales"
	"github.com/mycoledger/mycoledger/internal/shared"
)

// QuotationValidity is how long a quotation stays valid after creation.
const QuotationValidity = 14 * 24 * time.Hour

// minRank is the lowest status rank at which each type can be shown.
var minRank = map[DocumentType]int{
	TypeQuotation: 0,
	TypeInvoice:   1,
	TypeDO:        2,
}

// documentActions lists which transitions each document offers.
var documentActions = map[DocumentType][]sales.Status{
	TypeQuotation: {sales.StatusInvoiced},
	TypeInvoice:   {sales.StatusShipped, sales.StatusPaid},
	TypeDO:        {sales.StatusPaid},
}

var paymentTerms = map[sales.PaymentMethod]string{
	sales.PaymentCash:       "Payment due in cash upon receipt of this invoice.",
	sales.PaymentCOD:        "Cash on delivery. Payment is collected when goods are delivered.",
	sales.PaymentCreditCard: "Charged to the customer's credit card.",
}

// Viewable reports whether a record in status can be shown as t.
func Viewable(status sales.Status, t DocumentType) bool {
	if !status.IsValid() {
		return false
	}
	if t == TypeReceipt {
		// Legacy DELIVERED records were never receipted.
		return status == sales.StatusPaid
	}
	min, ok := minRank[t]
	return ok && status.Rank() >= min
}

// AvailableTypes lists the document types viewable for rec, in lifecycle order.
func AvailableTypes(rec sales.Record) []DocumentType {
	out := []DocumentType{}
	for _, t := range AllTypes {
		if Viewable(rec.Status, t) {
			out = append(out, t)
		}
	}
	return out
}

// DefaultTypeFor is the document to show after a record reaches status.
func DefaultTypeFor(status sales.Status) DocumentType {
	switch status {
	case sales.StatusQuotation:
		return TypeQuotation
	case sales.StatusShipped, sales.StatusDelivered:
		return TypeDO
	case sales.StatusPaid:
		return TypeReceipt
	default:
		return TypeInvoice
	}
}

// Resolve builds the document view of rec as docType. The view offers the
// transitions that are legal now and belong on that document.
func Resolve(rec sales.Record, docType DocumentType, company Company) (View, error) {
	layout, ok := layouts[docType]
	if !ok {
		return View{}, ErrUnknownDocumentType
	}
	if !Viewable(rec.Status, docType) {
		return View{}, &NotViewableError{Type: docType, Status: rec.Status}
	}
	if company.Name == "" {
		company = DefaultCompany
	}

	v := View{
		Type:        docType,
		Title:       layout.Title,
		Subtitle:    "#" + rec.InvoiceID + layout.SubtitleSuffix,
		AccentColor: layout.AccentColor,
		SaleID:      rec.ID,
		InvoiceID:   rec.InvoiceID,
		Status:      rec.Status,
		Company:     company,
		Party: Party{
			Label: layout.PartyLabel,
			Name:  rec.CustomerName,
			Email: rec.CustomerEmail,
			Phone: rec.CustomerPhone,
		},
		Date:       rec.DateCreated,
		ShowPrices: layout.ShowPrices,
		PaidMarker: layout.PaidMarker,
		Lines:      make([]Line, 0, len(rec.Items)),
		Actions:    actionsFor(rec.Status, docType),
	}
	if layout.ShowValidUntil {
		until := rec.DateCreated.Add(QuotationValidity)
		v.ValidUntil = &until
	}
	if layout.ShowPaymentTerms {
		v.PaymentTerms = paymentTerms[rec.PaymentMethod]
	}
	for _, it := range rec.Items {
		line := Line{Item: it.ProductLabel, Packaging: it.Packaging, Quantity: it.Quantity}
		if line.Item == "" {
			line.Item = it.ProductID
		}
		if layout.ShowPrices {
			price := it.UnitPrice
			line.UnitPrice = &price
		}
		if layout.ShowLineTotals {
			total := it.LineTotal()
			line.LineTotal = &total
		}
		v.Lines = append(v.Lines, line)
	}
	if layout.ShowTotal {
		total := rec.TotalAmount
		if total.IsZero() && len(rec.Items) > 0 {
			total = sales.TotalOf(rec.Items)
		}
		total = total.Round(2)
		v.Total = &total
	}
	if layout.ShowSignatureBlock {
		v.Signature = &Signature{AuthorizedBy: company.Name, ReceivedBy: rec.CustomerName}
	}
	return v, nil
}

func actionsFor(status sales.Status, docType DocumentType) []sales.Action {
	out := []sales.Action{}
	for _, target := range documentActions[docType] {
		if action, ok := sales.ActionFor(status, target); ok {
			out = append(out, action)
		}
	}
	return out
}

// FormatMoney prints an optional amount; nil renders empty.
func FormatMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return shared.FormatAmount(*d)
}
