package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mycoledger/mycoledger/internal/costing"
	"github.com/mycoledger/mycoledger/internal/inventory"
	"github.com/mycoledger/mycoledger/internal/procurement"
	"github.com/mycoledger/mycoledger/internal/sales"
	"github.com/mycoledger/mycoledger/internal/shared"
)

// atRiskAfterDay and atRiskBelowPct define when revenue is flagged as lagging.
const (
	atRiskAfterDay = 15
	atRiskBelowPct = 50
)

// RollupInput is the snapshot a rollup is computed from.
type RollupInput struct {
	Sales          []sales.Record
	PurchaseOrders []procurement.PurchaseOrder
	Costs          []costing.AggregatedCostMetric
	Stock          []inventory.StockLevel
	// Budget is the current month's budget, nil when none was set.
	Budget *Budget
}

// Summary is the derived financial position.
type Summary struct {
	TotalProcurementCost decimal.Decimal `json:"total_procurement_cost"`
	TotalRawMaterialCost decimal.Decimal `json:"total_raw_material_cost"`
	TotalPackagingCost   decimal.Decimal `json:"total_packaging_cost"`
	TotalLaborCost       decimal.Decimal `json:"total_labor_cost"`
	TotalWastageCost     decimal.Decimal `json:"total_wastage_cost"`
	TotalOverallCost     decimal.Decimal `json:"total_overall_cost"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	NetProfit            decimal.Decimal `json:"net_profit"`
	AvgCostPerUnit       decimal.Decimal `json:"avg_cost_per_unit"`
	TotalUnits           int             `json:"total_units"`
	RevenueProgressPct   decimal.Decimal `json:"revenue_progress_pct"`
	ProfitProgressPct    decimal.Decimal `json:"profit_progress_pct"`
	IsRevenueAtRisk      bool            `json:"is_revenue_at_risk"`
	MaxWastageKg         decimal.Decimal `json:"max_wastage_kg"`
	HasBudget            bool            `json:"has_budget"`
	ComputedAt           time.Time       `json:"computed_at"`
}

// Rollup derives the financial summary from a snapshot. It holds no state and is
// recomputed on every call.
func Rollup(in RollupInput, now time.Time) Summary {
	var out Summary
	out.ComputedAt = now

	out.TotalProcurementCost = procurement.SpendTotal(in.PurchaseOrders)

	out.TotalRawMaterialCost = decimal.Zero
	out.TotalPackagingCost = decimal.Zero
	out.TotalLaborCost = decimal.Zero
	out.TotalWastageCost = decimal.Zero
	for _, c := range in.Costs {
		out.TotalRawMaterialCost = out.TotalRawMaterialCost.Add(c.RawMaterialCost)
		out.TotalPackagingCost = out.TotalPackagingCost.Add(c.PackagingCost)
		out.TotalLaborCost = out.TotalLaborCost.Add(c.LaborCost)
		out.TotalWastageCost = out.TotalWastageCost.Add(c.WastageCost)
	}

	// Packaging on cost records is informational; procurement stands in for it.
	// Wastage is tracked separately and stays out of the overall cost.
	out.TotalOverallCost = out.TotalProcurementCost.Add(out.TotalRawMaterialCost).Add(out.TotalLaborCost)

	out.TotalRevenue = RevenueOf(in.Sales)
	out.NetProfit = out.TotalRevenue.Sub(out.TotalOverallCost)

	for _, s := range in.Stock {
		out.TotalUnits += s.Quantity
	}
	out.AvgCostPerUnit = decimal.Zero
	if out.TotalUnits > 0 {
		out.AvgCostPerUnit = shared.RoundCents(out.TotalOverallCost.Div(decimal.NewFromInt(int64(out.TotalUnits))))
	}

	out.RevenueProgressPct = decimal.Zero
	out.ProfitProgressPct = decimal.Zero
	out.MaxWastageKg = decimal.Zero
	if in.Budget != nil {
		out.HasBudget = true
		out.RevenueProgressPct = shared.Percent(out.TotalRevenue, in.Budget.TargetRevenue)
		out.ProfitProgressPct = shared.Percent(out.NetProfit, in.Budget.TargetProfit)
		out.MaxWastageKg = in.Budget.MaxWastageKg
	}
	out.IsRevenueAtRisk = now.Day() > atRiskAfterDay &&
		out.RevenueProgressPct.LessThan(decimal.NewFromInt(atRiskBelowPct))
	out.RevenueProgressPct = out.RevenueProgressPct.Round(2)
	out.ProfitProgressPct = out.ProfitProgressPct.Round(2)
	return out
}

// RevenueOf sums the totals of paid or delivered sales.
func RevenueOf(records []sales.Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		if rec.Status.CountsAsRevenue() {
			total = total.Add(rec.TotalAmount)
		}
	}
	return total
}
