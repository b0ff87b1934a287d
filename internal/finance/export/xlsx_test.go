package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mycoledger/mycoledger/internal/costing"
	"github.com/mycoledger/mycoledger/internal/finance"
	"github.com/mycoledger/mycoledger/internal/procurement"
	"github.com/mycoledger/mycoledger/internal/sales"
)

func TestWriteLedgerXLSX(t *testing.T) {
	now := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	snap := finance.Snapshot{Month: "2026-03"}
	snap.Sales = []sales.Record{{
		ID: "s1", InvoiceID: "INV-000001", CustomerName: "Acme Grocers", Status: sales.StatusPaid,
		PaymentMethod: sales.PaymentCash, TotalAmount: decimal.RequireFromString("600"), DateCreated: now,
	}}
	snap.PurchaseOrders = []procurement.PurchaseOrder{{
		ID: "po1", ItemName: "Kraft pouch", Supplier: "PackCo", Quantity: 2, TotalUnits: 200,
		Status: procurement.POStatusReceived, TotalCost: decimal.RequireFromString("80"),
	}}
	snap.Costs = []costing.AggregatedCostMetric{{
		ID: "c1", Date: now, ReferenceID: "B-1", RecordCount: 2,
		RawMaterialCost: decimal.RequireFromString("40"), LaborCost: decimal.RequireFromString("25"),
	}}
	dash := finance.Build(snap, now)

	var buf bytes.Buffer
	require.NoError(t, WriteLedgerXLSX(&buf, LedgerPayload{Snapshot: snap, Dashboard: dash}))
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{SheetSummary, SheetSales, SheetCosts, SheetPurchaseOrders}, f.GetSheetList())

	rows, err := f.GetRows(SheetSales)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "INV-000001", rows[1][0])
	assert.Equal(t, "PAID", rows[1][3])

	revenue, err := f.GetCellValue(SheetSummary, "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "600.00", revenue)

	costRows, err := f.GetRows(SheetCosts)
	require.NoError(t, err)
	require.Len(t, costRows, 2)
	assert.Equal(t, "B-1", costRows[1][1])
}
