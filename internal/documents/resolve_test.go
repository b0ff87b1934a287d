package documents

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycoledger/mycoledger/internal/sales"
)

var created = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func record(status sales.Status) sales.Record {
	items := []sales.LineItem{{
		ProductID: "fg-shiitake-100", ProductLabel: "Dried Shiitake", Packaging: "100g",
		Quantity: 10, UnitPrice: decimal.RequireFromString("15.00"),
	}}
	return sales.Record{
		ID: "s1", InvoiceID: "INV-000001", CustomerName: "Acme Co", CustomerEmail: "buyer@acme.test",
		Items: items, TotalAmount: sales.TotalOf(items), PaymentMethod: sales.PaymentCOD,
		Status: status, DateCreated: created,
	}
}

func TestViewabilityMatrix(t *testing.T) {
	want := map[sales.Status][]DocumentType{
		sales.StatusQuotation: {TypeQuotation},
		sales.StatusInvoiced:  {TypeQuotation, TypeInvoice},
		sales.StatusShipped:   {TypeQuotation, TypeInvoice, TypeDO},
		sales.StatusPaid:      {TypeQuotation, TypeInvoice, TypeDO, TypeReceipt},
		sales.StatusDelivered: {TypeQuotation, TypeInvoice, TypeDO},
		sales.Status("BOGUS"): {},
	}
	for status, types := range want {
		assert.Equal(t, types, AvailableTypes(record(status)), status)
	}
}

func TestQuotationRejectsReceipt(t *testing.T) {
	rec := record(sales.StatusQuotation)
	assert.Equal(t, "150.00", rec.TotalAmount.StringFixed(2))

	_, err := Resolve(rec, TypeReceipt, Company{})
	require.ErrorIs(t, err, ErrNotViewable)
	var nv *NotViewableError
	require.ErrorAs(t, err, &nv)
	assert.Equal(t, sales.StatusQuotation, nv.Status)

	_, err = Resolve(rec, DocumentType("PACKING_LIST"), Company{})
	require.ErrorIs(t, err, ErrUnknownDocumentType)
}

func TestQuotationLayout(t *testing.T) {
	v, err := Resolve(record(sales.StatusQuotation), TypeQuotation, Company{})
	require.NoError(t, err)
	assert.Equal(t, "QUOTATION", v.Title)
	assert.Equal(t, "#INV-000001 (Estimate)", v.Subtitle)
	assert.Equal(t, "Bill To", v.Party.Label)
	require.NotNil(t, v.ValidUntil)
	assert.Equal(t, created.AddDate(0, 0, 14), *v.ValidUntil)
	assert.Empty(t, v.PaymentTerms)
	assert.Equal(t, DefaultCompany, v.Company)
	require.Len(t, v.Actions, 1)
	assert.Equal(t, "Confirm & Invoice", v.Actions[0].Label)
	assert.True(t, v.Actions[0].RequiresConfirmation)
}

func TestDeliveryOrderHidesPrices(t *testing.T) {
	v, err := Resolve(record(sales.StatusShipped), TypeDO, Company{})
	require.NoError(t, err)
	assert.Equal(t, "DELIVERY ORDER", v.Title)
	assert.Equal(t, "Ship To", v.Party.Label)
	assert.False(t, v.ShowPrices)
	require.Len(t, v.Lines, 1)
	assert.Nil(t, v.Lines[0].UnitPrice)
	assert.Nil(t, v.Lines[0].LineTotal)
	assert.Equal(t, 10, v.Lines[0].Quantity)
	assert.Nil(t, v.Total)
	require.NotNil(t, v.Signature)
	assert.Equal(t, "Acme Co", v.Signature.ReceivedBy)
	require.Len(t, v.Actions, 1)
	assert.Equal(t, sales.StatusPaid, v.Actions[0].Target)
}

func TestInvoiceAndReceipt(t *testing.T) {
	v, err := Resolve(record(sales.StatusInvoiced), TypeInvoice, Company{})
	require.NoError(t, err)
	assert.NotEmpty(t, v.PaymentTerms)
	assert.Nil(t, v.ValidUntil)
	require.NotNil(t, v.Total)
	assert.Equal(t, "150.00", v.Total.StringFixed(2))
	require.Len(t, v.Actions, 2)
	assert.Equal(t, "Generate DO", v.Actions[0].Label)
	assert.Equal(t, "Mark Paid", v.Actions[1].Label)

	v, err = Resolve(record(sales.StatusPaid), TypeReceipt, Company{Name: "Myco Sdn Bhd"})
	require.NoError(t, err)
	assert.Equal(t, "PAID IN FULL", v.PaidMarker)
	assert.Empty(t, v.Actions)
	assert.Equal(t, "Myco Sdn Bhd", v.Company.Name)

	// An older document stays viewable but offers nothing once the record moved on.
	v, err = Resolve(record(sales.StatusShipped), TypeQuotation, Company{})
	require.NoError(t, err)
	assert.Empty(t, v.Actions)
}

func TestDefaultTypeFor(t *testing.T) {
	assert.Equal(t, TypeQuotation, DefaultTypeFor(sales.StatusQuotation))
	assert.Equal(t, TypeInvoice, DefaultTypeFor(sales.StatusInvoiced))
	assert.Equal(t, TypeDO, DefaultTypeFor(sales.StatusShipped))
	assert.Equal(t, TypeReceipt, DefaultTypeFor(sales.StatusPaid))
	for _, s := range []sales.Status{sales.StatusQuotation, sales.StatusInvoiced, sales.StatusShipped, sales.StatusPaid, sales.StatusDelivered} {
		assert.True(t, Viewable(s, DefaultTypeFor(s)), s)
	}
}

func TestParseType(t *testing.T) {
	got, err := ParseType("do")
	require.NoError(t, err)
	assert.Equal(t, TypeDO, got)
	_, err = ParseType("memo")
	require.ErrorIs(t, err, ErrUnknownDocumentType)
}
