package costing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	settingLaborRate = "costing.labor_rate_per_hour"
	settingRawRate   = "costing.raw_material_rate_per_kg"
)

// ErrInvalidRate is returned for negative rates.
var ErrInvalidRate = errors.New("rate must not be negative")

// Rates prices labour and raw material for cost entry.
type Rates struct {
	LaborPerHour     decimal.Decimal `json:"labor_per_hour"`
	RawMaterialPerKg decimal.Decimal `json:"raw_material_per_kg"`
}

// DefaultRates applies when nothing has been configured.
func DefaultRates() Rates {
	return Rates{
		LaborPerHour:     decimal.RequireFromString("12.50"),
		RawMaterialPerKg: decimal.RequireFromString("8.00"),
	}
}

// Validate rejects negative rates.
func (r Rates) Validate() error {
	if r.LaborPerHour.IsNegative() || r.RawMaterialPerKg.IsNegative() {
		return ErrInvalidRate
	}
	return nil
}

// Price derives the raw material and labour buckets of an entry.
func (r Rates) Price(in CostEntryInput) DailyCostMetric {
	m := DailyCostMetric{
		Date:            in.Date,
		ReferenceID:     in.ReferenceID,
		WeightProcessed: in.WeightProcessed,
		ProcessingHours: in.ProcessingHours,
		RawMaterialCost: in.WeightProcessed.Mul(r.RawMaterialPerKg).Round(2),
		LaborCost:       in.ProcessingHours.Mul(r.LaborPerHour).Round(2),
		PackagingCost:   in.PackagingCost,
		WastageCost:     in.WastageCost,
	}
	m.TotalCost = m.BucketSum()
	return m
}

// RateStore keeps rates in the app_settings table.
type RateStore struct {
	pool *pgxpool.Pool
}

// NewRateStore constructs RateStore.
func NewRateStore(pool *pgxpool.Pool) *RateStore {
	return &RateStore{pool: pool}
}

// Get returns stored rates, falling back to defaults per missing key.
func (s *RateStore) Get(ctx context.Context) (Rates, error) {
	rates := DefaultRates()
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM app_settings WHERE key = ANY($1)`,
		[]string{settingLaborRate, settingRawRate})
	if err != nil {
		return Rates{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Rates{}, err
		}
		v, err := decimal.NewFromString(value)
		if err != nil {
			continue
		}
		switch key {
		case settingLaborRate:
			rates.LaborPerHour = v
		case settingRawRate:
			rates.RawMaterialPerKg = v
		}
	}
	return rates, rows.Err()
}

// Set stores both rates atomically.
func (s *RateStore) Set(ctx context.Context, r Rates) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for key, v := range map[string]decimal.Decimal{settingLaborRate: r.LaborPerHour, settingRawRate: r.RawMaterialPerKg} {
			if _, err := tx.Exec(ctx, `INSERT INTO app_settings (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, key, v.String()); err != nil {
				return fmt.Errorf("store %s: %w", key, err)
			}
		}
		return nil
	})
}
