package costing

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("cost record not found")
	ErrInvalidEntry = errors.New("invalid cost entry")
)

// DailyCostMetric is one raw production cost entry.
type DailyCostMetric struct {
	ID              string          `json:"id"`
	Date            time.Time       `json:"date"`
	ReferenceID     string          `json:"reference_id"`
	WeightProcessed decimal.Decimal `json:"weight_processed"`
	ProcessingHours decimal.Decimal `json:"processing_hours"`
	RawMaterialCost decimal.Decimal `json:"raw_material_cost"`
	PackagingCost   decimal.Decimal `json:"packaging_cost"`
	LaborCost       decimal.Decimal `json:"labor_cost"`
	WastageCost     decimal.Decimal `json:"wastage_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
}

// BucketSum adds the four cost buckets.
func (m DailyCostMetric) BucketSum() decimal.Decimal {
	return m.RawMaterialCost.Add(m.PackagingCost).Add(m.LaborCost).Add(m.WastageCost)
}

// AggregatedCostMetric merges every raw record sharing a date and reference.
type AggregatedCostMetric struct {
	ID              string          `json:"id"`
	Date            time.Time       `json:"date"`
	ReferenceID     string          `json:"reference_id"`
	RecordCount     int             `json:"record_count"`
	SourceIDs       []string        `json:"source_ids"`
	WeightProcessed decimal.Decimal `json:"weight_processed"`
	ProcessingHours decimal.Decimal `json:"processing_hours"`
	RawMaterialCost decimal.Decimal `json:"raw_material_cost"`
	PackagingCost   decimal.Decimal `json:"packaging_cost"`
	LaborCost       decimal.Decimal `json:"labor_cost"`
	WastageCost     decimal.Decimal `json:"wastage_cost"`
	// ReportedTotal is the sum of the totals stored on the raw records.
	ReportedTotal decimal.Decimal `json:"reported_total"`
}

// TotalCost is derived from the buckets.
func (m AggregatedCostMetric) TotalCost() decimal.Decimal {
	return m.RawMaterialCost.Add(m.PackagingCost).Add(m.LaborCost).Add(m.WastageCost)
}

// MarshalJSON adds the derived total and mismatch flag to the stored fields.
func (m AggregatedCostMetric) MarshalJSON() ([]byte, error) {
	type fields AggregatedCostMetric
	return json.Marshal(struct {
		fields
		TotalCost decimal.Decimal `json:"total_cost"`
		Mismatch  bool            `json:"mismatch"`
	}{fields(m), m.TotalCost(), m.Mismatch()})
}

// Mismatch reports whether the stored totals disagree with the buckets.
func (m AggregatedCostMetric) Mismatch() bool {
	return !m.ReportedTotal.Equal(m.TotalCost())
}

// CostEntryInput is what an operator records after a production run.
type CostEntryInput struct {
	Date            time.Time       `json:"date" validate:"required"`
	ReferenceID     string          `json:"reference_id" validate:"max=100"`
	WeightProcessed decimal.Decimal `json:"weight_processed"`
	ProcessingHours decimal.Decimal `json:"processing_hours"`
	PackagingCost   decimal.Decimal `json:"packaging_cost"`
	WastageCost     decimal.Decimal `json:"wastage_cost"`
}
