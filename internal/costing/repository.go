package costing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists raw cost records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const costColumns = `id, cost_date, reference_id, weight_processed, processing_hours,
raw_material_cost, packaging_cost, labor_cost, wastage_cost, total_cost`

// ListCostRecords returns every raw record.
func (r *Repository) ListCostRecords(ctx context.Context) ([]DailyCostMetric, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+costColumns+` FROM daily_costs ORDER BY cost_date DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DailyCostMetric{}
	for rows.Next() {
		m, err := scanCost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetCostRecord loads one raw record.
func (r *Repository) GetCostRecord(ctx context.Context, id string) (DailyCostMetric, error) {
	m, err := scanCost(r.pool.QueryRow(ctx, `SELECT `+costColumns+` FROM daily_costs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return DailyCostMetric{}, ErrNotFound
	}
	return m, err
}

// UpsertCostRecord inserts or replaces a raw record.
func (r *Repository) UpsertCostRecord(ctx context.Context, m DailyCostMetric) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO daily_costs (`+costColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET cost_date = EXCLUDED.cost_date, reference_id = EXCLUDED.reference_id,
weight_processed = EXCLUDED.weight_processed, processing_hours = EXCLUDED.processing_hours,
raw_material_cost = EXCLUDED.raw_material_cost, packaging_cost = EXCLUDED.packaging_cost,
labor_cost = EXCLUDED.labor_cost, wastage_cost = EXCLUDED.wastage_cost, total_cost = EXCLUDED.total_cost`,
		m.ID, m.Date, m.ReferenceID, m.WeightProcessed, m.ProcessingHours,
		m.RawMaterialCost, m.PackagingCost, m.LaborCost, m.WastageCost, m.TotalCost)
	return err
}

func scanCost(row pgx.Row) (DailyCostMetric, error) {
	var m DailyCostMetric
	err := row.Scan(&m.ID, &m.Date, &m.ReferenceID, &m.WeightProcessed, &m.ProcessingHours,
		&m.RawMaterialCost, &m.PackagingCost, &m.LaborCost, &m.WastageCost, &m.TotalCost)
	return m, err
}
