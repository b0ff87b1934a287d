package costing

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateKey = "2006-01-02"

// Aggregate merges raw records sharing a UTC date and reference id. Records
// without a reference stay on their own. The result does not depend on input
// order: the retained id is the smallest in the group and output is sorted by
// date descending, then reference, then id.
func Aggregate(records []DailyCostMetric) []AggregatedCostMetric {
	groups := make(map[string]*AggregatedCostMetric)
	for _, rec := range records {
		ref := strings.TrimSpace(rec.ReferenceID)
		day := rec.Date.UTC().Format(dateKey)
		key := day + "|ref|" + ref
		if ref == "" {
			key = day + "|id|" + rec.ID
		}
		g, ok := groups[key]
		if !ok {
			y, m, d := rec.Date.UTC().Date()
			date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			g = &AggregatedCostMetric{
				ID:              rec.ID,
				Date:            date,
				ReferenceID:     ref,
				WeightProcessed: decimal.Zero,
				ProcessingHours: decimal.Zero,
				RawMaterialCost: decimal.Zero,
				PackagingCost:   decimal.Zero,
				LaborCost:       decimal.Zero,
				WastageCost:     decimal.Zero,
				ReportedTotal:   decimal.Zero,
			}
			groups[key] = g
		}
		if rec.ID < g.ID {
			g.ID = rec.ID
		}
		g.RecordCount++
		g.SourceIDs = append(g.SourceIDs, rec.ID)
		g.WeightProcessed = g.WeightProcessed.Add(rec.WeightProcessed)
		g.ProcessingHours = g.ProcessingHours.Add(rec.ProcessingHours)
		g.RawMaterialCost = g.RawMaterialCost.Add(rec.RawMaterialCost)
		g.PackagingCost = g.PackagingCost.Add(rec.PackagingCost)
		g.LaborCost = g.LaborCost.Add(rec.LaborCost)
		g.WastageCost = g.WastageCost.Add(rec.WastageCost)
		g.ReportedTotal = g.ReportedTotal.Add(rec.TotalCost)
	}

	out := make([]AggregatedCostMetric, 0, len(groups))
	for _, g := range groups {
		sort.Strings(g.SourceIDs)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.ReferenceID != b.ReferenceID {
			return a.ReferenceID < b.ReferenceID
		}
		return a.ID < b.ID
	})
	return out
}
