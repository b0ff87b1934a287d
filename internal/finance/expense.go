package finance

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// fullCirclePct is the share above which a slice is drawn as a whole disc.
const fullCirclePct = 99.9

// FullCirclePath draws a unit circle as two half arcs.
const FullCirclePath = "M 1 0 A 1 1 0 1 1 -1 0 A 1 1 0 1 1 1 0"

// ExpenseBuckets are the four pie inputs.
type ExpenseBuckets struct {
	RawMaterials decimal.Decimal
	Packaging    decimal.Decimal
	Labor        decimal.Decimal
	Wastage      decimal.Decimal
}

// BucketsFrom maps a summary onto the pie buckets. Packaging is fed with the
// procurement total.
func BucketsFrom(s Summary) ExpenseBuckets {
	return ExpenseBuckets{
		RawMaterials: s.TotalRawMaterialCost,
		Packaging:    s.TotalProcurementCost,
		Labor:        s.TotalLaborCost,
		Wastage:      s.TotalWastageCost,
	}
}

// ExpenseSlice is one wedge of the expense distribution chart.
type ExpenseSlice struct {
	Label      string          `json:"label"`
	Color      string          `json:"color"`
	Cost       decimal.Decimal `json:"cost"`
	Percentage float64         `json:"percentage"`
	StartAngle float64         `json:"start_angle"`
	EndAngle   float64         `json:"end_angle"`
	LargeArc   bool            `json:"large_arc"`
	FullCircle bool            `json:"full_circle"`
	Path       string          `json:"path"`
}

type bucket struct {
	label string
	color string
	cost  decimal.Decimal
}

// Slices converts the buckets into pie geometry on a unit circle. Negative
// buckets count as zero and zero buckets are skipped; a zero total yields an
// empty list.
func Slices(b ExpenseBuckets) []ExpenseSlice {
	buckets := []bucket{
		{label: "Raw Materials", color: "#15803d", cost: b.RawMaterials},
		{label: "Packaging", color: "#16a34a", cost: b.Packaging},
		{label: "Labor", color: "#3b82f6", cost: b.Labor},
		{label: "Wastage", color: "#ef4444", cost: b.Wastage},
	}
	total := decimal.Zero
	for i := range buckets {
		if buckets[i].cost.IsNegative() {
			buckets[i].cost = decimal.Zero
		}
		total = total.Add(buckets[i].cost)
	}
	out := []ExpenseSlice{}
	if !total.IsPositive() {
		return out
	}

	cumulative := 0.0
	for _, bk := range buckets {
		if !bk.cost.IsPositive() {
			continue
		}
		fraction := bk.cost.Div(total).InexactFloat64()
		start := cumulative
		cumulative += fraction
		slice := ExpenseSlice{
			Label:      bk.label,
			Color:      bk.color,
			Cost:       bk.cost,
			Percentage: fraction * 100,
			StartAngle: 2 * math.Pi * start,
			EndAngle:   2 * math.Pi * cumulative,
			LargeArc:   fraction > 0.5,
		}
		if slice.Percentage > fullCirclePct {
			slice.FullCircle = true
			slice.Path = FullCirclePath
		} else {
			slice.Path = arcPath(slice.StartAngle, slice.EndAngle, slice.LargeArc)
		}
		out = append(out, slice)
	}
	return out
}

func arcPath(start, end float64, large bool) string {
	flag := 0
	if large {
		flag = 1
	}
	return fmt.Sprintf("M 0 0 L %s %s A 1 1 0 %d 1 %s %s L 0 0",
		coord(math.Cos(start)), coord(math.Sin(start)), flag,
		coord(math.Cos(end)), coord(math.Sin(end)))
}

func coord(v float64) string {
	if math.Abs(v) < 1e-9 {
		v = 0
	}
	return fmt.Sprintf("%.4f", v)
}
