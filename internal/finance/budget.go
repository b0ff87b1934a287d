package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
)

// MonthLayout is the key format of a budget month.
const MonthLayout = "2006-01"

var (
	ErrInvalidMonth   = fmt.Errorf("month must be formatted YYYY-MM: %w", httpx.ErrValidation)
	ErrNegativeTarget = fmt.Errorf("budget targets must not be negative: %w", httpx.ErrValidation)
	ErrInvalidAmount  = fmt.Errorf("budget amounts must be decimal numbers: %w", httpx.ErrValidation)
)

// Budget holds the monthly targets. There is exactly one per calendar month.
type Budget struct {
	ID            string          `json:"id"`
	Month         string          `json:"month"`
	TargetRevenue decimal.Decimal `json:"target_revenue"`
	TargetProfit  decimal.Decimal `json:"target_profit"`
	MaxWastageKg  decimal.Decimal `json:"max_wastage_kg"`
}

// BudgetInput is the payload for PUT /finance/budgets/{month}.
type BudgetInput struct {
	TargetRevenue string `json:"target_revenue" validate:"required"`
	TargetProfit  string `json:"target_profit"`
	MaxWastageKg  string `json:"max_wastage_kg"`
}

// ParseMonth validates a YYYY-MM key.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// MonthKey returns the budget key of the month containing t.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// BudgetRepository persists budgets in PostgreSQL.
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository constructs the repository.
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Get returns the budget for month, or nil when none was set.
func (r *BudgetRepository) Get(ctx context.Context, month string) (*Budget, error) {
	if _, err := ParseMonth(month); err != nil {
		return nil, err
	}
	var b Budget
	err := r.pool.QueryRow(ctx, `SELECT month, target_revenue, target_profit, max_wastage_kg
FROM budgets WHERE month = $1`, month).Scan(&b.Month, &b.TargetRevenue, &b.TargetProfit, &b.MaxWastageKg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget %s: %w", month, err)
	}
	b.ID = b.Month
	return &b, nil
}

// Upsert inserts or replaces the budget of b.Month.
func (r *BudgetRepository) Upsert(ctx context.Context, b Budget) error {
	if _, err := ParseMonth(b.Month); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO budgets (month, target_revenue, target_profit, max_wastage_kg, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (month) DO UPDATE SET target_revenue = EXCLUDED.target_revenue,
target_profit = EXCLUDED.target_profit, max_wastage_kg = EXCLUDED.max_wastage_kg, updated_at = NOW()`,
		b.Month, b.TargetRevenue, b.TargetProfit, b.MaxWastageKg)
	if err != nil {
		return fmt.Errorf("upsert budget %s: %w", b.Month, err)
	}
	return nil
}
