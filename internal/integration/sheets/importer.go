package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mycoledger/mycoledger/internal/costing"
	"github.com/mycoledger/mycoledger/internal/sales"
)

// SalesUpserter replaces sales records by id.
type SalesUpserter interface {
	Upsert(ctx context.Context, rec sales.Record) error
}

// CostUpserter replaces raw cost records by id.
type CostUpserter interface {
	UpsertCostRecord(ctx context.Context, m costing.DailyCostMetric) error
}

// Refresher is told once an import changed the ledgers.
type Refresher interface {
	Invalidate(ctx context.Context) error
}

// Result counts what an import did.
type Result struct {
	Sales   int `json:"sales"`
	Costs   int `json:"costs"`
	Skipped int `json:"skipped"`
}

// Importer copies the Sales and DailyCosts ranges into the database.
type Importer struct {
	reader    Reader
	sales     SalesUpserter
	costs     CostUpserter
	refresher Refresher
	cfg       Config
	logger    *slog.Logger
}

// NewImporter wires an importer. refresher may be nil.
func NewImporter(reader Reader, salesRepo SalesUpserter, costRepo CostUpserter, refresher Refresher, cfg Config, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{reader: reader, sales: salesRepo, costs: costRepo, refresher: refresher, cfg: cfg, logger: logger}
}

// Run imports both ranges. Bad rows are logged and skipped; a failed write aborts.
func (i *Importer) Run(ctx context.Context) (Result, error) {
	var res Result
	if i.cfg.SalesRange != "" {
		rows, err := i.reader.ReadRange(ctx, i.cfg.SalesRange)
		if err != nil {
			return res, err
		}
		for n, row := range rows {
			rec, err := ParseSaleRow(n+1, row)
			if err != nil {
				i.skip(&res, i.cfg.SalesRange, err)
				continue
			}
			if err := i.sales.Upsert(ctx, rec); err != nil {
				return res, fmt.Errorf("upsert sale %s: %w", rec.ID, err)
			}
			res.Sales++
		}
	}
	if i.cfg.CostsRange != "" {
		rows, err := i.reader.ReadRange(ctx, i.cfg.CostsRange)
		if err != nil {
			return res, err
		}
		for n, row := range rows {
			m, err := ParseCostRow(n+1, row)
			if err != nil {
				i.skip(&res, i.cfg.CostsRange, err)
				continue
			}
			if err := i.costs.UpsertCostRecord(ctx, m); err != nil {
				return res, fmt.Errorf("upsert cost %s: %w", m.ID, err)
			}
			res.Costs++
		}
	}
	if i.refresher != nil && res.Sales+res.Costs > 0 {
		if err := i.refresher.Invalidate(ctx); err != nil {
			i.logger.Warn("refresh dashboard after import", slog.Any("error", err))
		}
	}
	i.logger.Info("sheets import finished",
		slog.Int("sales", res.Sales), slog.Int("costs", res.Costs), slog.Int("skipped", res.Skipped))
	return res, nil
}

func (i *Importer) skip(res *Result, sheetRange string, err error) {
	res.Skipped++
	var rowErr *RowError
	if errors.As(err, &rowErr) {
		i.logger.Warn("skip sheet row", slog.String("range", sheetRange), slog.Int("row", rowErr.Row), slog.String("reason", rowErr.Reason))
		return
	}
	i.logger.Warn("skip sheet row", slog.String("range", sheetRange), slog.Any("error", err))
}
