package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mycoledger/mycoledger/internal/costing"
	"github.com/mycoledger/mycoledger/internal/inventory"
	"github.com/mycoledger/mycoledger/internal/procurement"
	"github.com/mycoledger/mycoledger/internal/sales"
	"github.com/mycoledger/mycoledger/internal/shared"
)

// SalesLister lists the sales ledger.
type SalesLister interface {
	List(ctx context.Context) ([]sales.Record, error)
}

// PurchaseOrderLister lists the procurement ledger.
type PurchaseOrderLister interface {
	List(ctx context.Context) ([]procurement.PurchaseOrder, error)
}

// CostLister lists aggregated production costs.
type CostLister interface {
	ListAggregated(ctx context.Context) ([]costing.AggregatedCostMetric, error)
}

// StockLister lists finished goods stock levels.
type StockLister interface {
	StockLevels(ctx context.Context) ([]inventory.StockLevel, error)
}

// BudgetStore persists monthly budgets. Get returns nil when none was set.
type BudgetStore interface {
	Get(ctx context.Context, month string) (*Budget, error)
	Upsert(ctx context.Context, b Budget) error
}

// Sources groups the ledgers the dashboard is built from.
type Sources struct {
	Sales          SalesLister
	PurchaseOrders PurchaseOrderLister
	Costs          CostLister
	Stock          StockLister
	Budgets        BudgetStore
}

// Snapshot is a consistent read of every input of the rollup.
type Snapshot struct {
	Month string
	RollupInput
}

// Dashboard is everything the finance page shows.
type Dashboard struct {
	Month   string                         `json:"month"`
	Summary Summary                        `json:"summary"`
	Budget  *Budget                        `json:"budget,omitempty"`
	Slices  []ExpenseSlice                 `json:"slices"`
	Weekly  []DailyRevenue                 `json:"weekly"`
	Costs   []costing.AggregatedCostMetric `json:"costs"`
}

// BuildObserver records how long uncached ledger snapshots take to load.
type BuildObserver interface {
	ObserveDashboardBuild(d time.Duration)
}

// Service assembles dashboards from the ledgers.
type Service struct {
	src      Sources
	cache    *Cache
	logger   *slog.Logger
	observer BuildObserver
	now      func() time.Time
}

// NewService wires the ledgers with an optional cache.
func NewService(src Sources, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, cache: cache, logger: logger, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// WithObserver attaches a build observer.
func (s *Service) WithObserver(o BuildObserver) {
	s.observer = o
}

// Snapshot fetches the five inputs in parallel.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	month := MonthKey(s.now())
	snap := Snapshot{Month: month}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := s.src.Sales.List(gctx)
		if err != nil {
			return fmt.Errorf("list sales: %w", err)
		}
		snap.Sales = recs
		return nil
	})
	g.Go(func() error {
		orders, err := s.src.PurchaseOrders.List(gctx)
		if err != nil {
			return fmt.Errorf("list purchase orders: %w", err)
		}
		snap.PurchaseOrders = orders
		return nil
	})
	g.Go(func() error {
		costs, err := s.src.Costs.ListAggregated(gctx)
		if err != nil {
			return fmt.Errorf("list costs: %w", err)
		}
		snap.Costs = costs
		return nil
	})
	g.Go(func() error {
		stock, err := s.src.Stock.StockLevels(gctx)
		if err != nil {
			return fmt.Errorf("list stock levels: %w", err)
		}
		snap.Stock = stock
		return nil
	})
	g.Go(func() error {
		budget, err := s.src.Budgets.Get(gctx, month)
		if err != nil {
			return err
		}
		snap.Budget = budget
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Dashboard computes the current dashboard. Only the ledger snapshot is
// cached, keyed by ledger version; the rollup runs on every call.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	snap, err := s.cachedSnapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Build(snap, s.now()), nil
}

func (s *Service) cachedSnapshot(ctx context.Context) (Snapshot, error) {
	key, err := s.cache.BuildKey(ctx, "finance", "snapshot", MonthKey(s.now()))
	if err != nil {
		s.logger.Warn("dashboard cache key", slog.Any("error", err))
		return s.loadSnapshot(ctx)
	}
	return FetchJSON(ctx, s.cache, key, s.loadSnapshot)
}

func (s *Service) loadSnapshot(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if s.observer != nil {
		s.observer.ObserveDashboardBuild(time.Since(start))
	}
	return snap, nil
}

// Build runs the pure pipeline over a snapshot.
func Build(snap Snapshot, now time.Time) Dashboard {
	summary := Rollup(snap.RollupInput, now)
	costs := snap.Costs
	if costs == nil {
		costs = []costing.AggregatedCostMetric{}
	}
	return Dashboard{
		Month:   snap.Month,
		Summary: summary,
		Budget:  snap.Budget,
		Slices:  Slices(BucketsFrom(summary)),
		Weekly:  WeeklyRevenue(snap.Sales, now),
		Costs:   costs,
	}
}

// Invalidate drops cached dashboards.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// GetBudget returns the budget of month, or nil when none was set.
func (s *Service) GetBudget(ctx context.Context, month string) (*Budget, error) {
	if _, err := ParseMonth(month); err != nil {
		return nil, err
	}
	return s.src.Budgets.Get(ctx, month)
}

// PutBudget upserts the budget of month.
func (s *Service) PutBudget(ctx context.Context, month string, in BudgetInput) (Budget, error) {
	if _, err := ParseMonth(month); err != nil {
		return Budget{}, err
	}
	b := Budget{ID: month, Month: month}
	var err error
	if b.TargetRevenue, err = budgetAmount("target_revenue", in.TargetRevenue, true); err != nil {
		return Budget{}, err
	}
	if b.TargetProfit, err = budgetAmount("target_profit", in.TargetProfit, false); err != nil {
		return Budget{}, err
	}
	if b.MaxWastageKg, err = budgetAmount("max_wastage_kg", in.MaxWastageKg, false); err != nil {
		return Budget{}, err
	}
	if b.TargetRevenue.LessThan(decimal.Zero) || b.TargetProfit.LessThan(decimal.Zero) || b.MaxWastageKg.LessThan(decimal.Zero) {
		return Budget{}, ErrNegativeTarget
	}
	if err := s.src.Budgets.Upsert(ctx, b); err != nil {
		return Budget{}, err
	}
	if err := s.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
	s.logger.Info("budget updated", slog.String("month", month))
	return b, nil
}

// budgetAmount parses one budget field. Optional fields may be left blank.
func budgetAmount(field, raw string, required bool) (decimal.Decimal, error) {
	if !required && strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := shared.StrictAmount(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, ErrInvalidAmount)
	}
	return d, nil
}
