package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mycoledger/mycoledger/internal/finance"
	"github.com/mycoledger/mycoledger/internal/shared"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LedgerPayload is the data written to the finance workbook.
type LedgerPayload struct {
	Snapshot  finance.Snapshot
	Dashboard finance.Dashboard
}

// Sheet names, in workbook order.
const (
	SheetSummary        = "Summary"
	SheetSales          = "Sales"
	SheetCosts          = "Daily Costs"
	SheetPurchaseOrders = "Purchase Orders"
)

type sheetWriter struct {
	f     *excelize.File
	money int
	head  int
}

// WriteLedgerXLSX writes the summary and the underlying ledgers as an xlsx workbook.
func WriteLedgerXLSX(w io.Writer, payload LedgerPayload) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetSales, SheetCosts, SheetPurchaseOrders} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}
	head, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	sw := &sheetWriter{f: f, money: money, head: head}

	if err := sw.summary(payload); err != nil {
		return err
	}
	if err := sw.sales(payload.Snapshot); err != nil {
		return err
	}
	if err := sw.costs(payload.Dashboard); err != nil {
		return err
	}
	if err := sw.purchaseOrders(payload.Snapshot); err != nil {
		return err
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func (sw *sheetWriter) summary(p LedgerPayload) error {
	s := p.Dashboard.Summary
	rows := [][]any{
		{"Month", p.Dashboard.Month},
		{"Total Revenue", s.TotalRevenue},
		{"Procurement Cost", s.TotalProcurementCost},
		{"Raw Material Cost", s.TotalRawMaterialCost},
		{"Labor Cost", s.TotalLaborCost},
		{"Wastage Cost", s.TotalWastageCost},
		{"Packaging Cost (records)", s.TotalPackagingCost},
		{"Total Overall Cost", s.TotalOverallCost},
		{"Net Profit", s.NetProfit},
		{"Avg Cost per Unit", s.AvgCostPerUnit},
		{"Revenue Progress %", s.RevenueProgressPct},
		{"Profit Progress %", s.ProfitProgressPct},
		{"Revenue At Risk", s.IsRevenueAtRisk},
		{"Net Profit (display)", shared.FormatAmountGrouped(s.NetProfit)},
		{"Generated At", s.ComputedAt.Format(time.RFC3339)},
	}
	if err := sw.header(SheetSummary, "Metric", "Value"); err != nil {
		return err
	}
	for i, row := range rows {
		if err := sw.row(SheetSummary, i+2, row...); err != nil {
			return err
		}
	}
	return sw.f.SetColWidth(SheetSummary, "A", "A", 26)
}

func (sw *sheetWriter) sales(snap finance.Snapshot) error {
	if err := sw.header(SheetSales, "Invoice", "Date", "Customer", "Status", "Payment", "Items", "Total"); err != nil {
		return err
	}
	for i, rec := range snap.Sales {
		err := sw.row(SheetSales, i+2,
			rec.InvoiceID,
			rec.DateCreated.Format(time.DateOnly),
			rec.CustomerName,
			string(rec.Status),
			string(rec.PaymentMethod),
			len(rec.Items),
			rec.TotalAmount,
		)
		if err != nil {
			return err
		}
	}
	return sw.f.SetColWidth(SheetSales, "C", "C", 28)
}

func (sw *sheetWriter) costs(d finance.Dashboard) error {
	if err := sw.header(SheetCosts, "Date", "Reference", "Records", "Weight (kg)", "Hours", "Raw Material", "Packaging", "Labor", "Wastage", "Total"); err != nil {
		return err
	}
	for i, c := range d.Costs {
		err := sw.row(SheetCosts, i+2,
			c.Date.UTC().Format(time.DateOnly),
			c.ReferenceID,
			c.RecordCount,
			c.WeightProcessed,
			c.ProcessingHours,
			c.RawMaterialCost,
			c.PackagingCost,
			c.LaborCost,
			c.WastageCost,
			c.TotalCost(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (sw *sheetWriter) purchaseOrders(snap finance.Snapshot) error {
	if err := sw.header(SheetPurchaseOrders, "ID", "Item", "Supplier", "Quantity", "Units", "Status", "Total Cost"); err != nil {
		return err
	}
	for i, po := range snap.PurchaseOrders {
		err := sw.row(SheetPurchaseOrders, i+2,
			po.ID, po.ItemName, po.Supplier, po.Quantity, po.TotalUnits, string(po.Status), po.TotalCost)
		if err != nil {
			return err
		}
	}
	return nil
}

func (sw *sheetWriter) header(sheet string, titles ...string) error {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	if err := sw.row(sheet, 1, values...); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		return err
	}
	return sw.f.SetCellStyle(sheet, "A1", last, sw.head)
}

// row writes values starting at column A. Decimals become numbers with a
// money format.
func (sw *sheetWriter) row(sheet string, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if d, ok := v.(decimal.Decimal); ok {
			if err := sw.f.SetCellFloat(sheet, cell, d.InexactFloat64(), 2, 64); err != nil {
				return err
			}
			if err := sw.f.SetCellStyle(sheet, cell, cell, sw.money); err != nil {
				return err
			}
			continue
		}
		if err := sw.f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
