package costing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
	"github.com/mycoledger/mycoledger/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	ListCostRecords(ctx context.Context) ([]DailyCostMetric, error)
	GetCostRecord(ctx context.Context, id string) (DailyCostMetric, error)
	UpsertCostRecord(ctx context.Context, m DailyCostMetric) error
}

// RatePort stores the labour and raw material rates.
type RatePort interface {
	Get(ctx context.Context) (Rates, error)
	Set(ctx context.Context, r Rates) error
}

// ChangeNotifier is told when costs or rates changed so derived views refresh.
type ChangeNotifier interface {
	Bump(ctx context.Context) error
}

// Service records production costs and aggregates them for reporting.
type Service struct {
	repo    RepositoryPort
	rates   RatePort
	changes ChangeNotifier
	logger  *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, rates RatePort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, rates: rates, logger: logger}
}

// WithChanges attaches the notifier bumped after every cost or rate write.
func (s *Service) WithChanges(n ChangeNotifier) {
	s.changes = n
}

// ListRaw returns the raw records as stored.
func (s *Service) ListRaw(ctx context.Context) ([]DailyCostMetric, error) {
	return s.repo.ListCostRecords(ctx)
}

// ListAggregated merges raw records per date and reference.
func (s *Service) ListAggregated(ctx context.Context) ([]AggregatedCostMetric, error) {
	records, err := s.repo.ListCostRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cost records: %w", err)
	}
	return Aggregate(records), nil
}

// Rates returns the current rates.
func (s *Service) Rates(ctx context.Context) (Rates, error) {
	return s.rates.Get(ctx)
}

// SetRates replaces the current rates.
func (s *Service) SetRates(ctx context.Context, r Rates) error {
	if err := r.Validate(); err != nil {
		return errors.Join(httpx.ErrValidation, err)
	}
	if err := s.rates.Set(ctx, r); err != nil {
		return fmt.Errorf("set rates: %w", err)
	}
	s.logger.Info("costing rates updated",
		slog.String("labor_per_hour", r.LaborPerHour.String()),
		slog.String("raw_material_per_kg", r.RawMaterialPerKg.String()))
	s.notify(ctx)
	return nil
}

// RecordCost prices an entry with the current rates and stores it.
func (s *Service) RecordCost(ctx context.Context, in CostEntryInput) (DailyCostMetric, error) {
	return s.save(ctx, "", in)
}

// UpdateCost reprices an existing entry.
func (s *Service) UpdateCost(ctx context.Context, id string, in CostEntryInput) (DailyCostMetric, error) {
	if _, err := s.repo.GetCostRecord(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return DailyCostMetric{}, errors.Join(httpx.ErrNotFound, err)
		}
		return DailyCostMetric{}, err
	}
	return s.save(ctx, id, in)
}

func (s *Service) save(ctx context.Context, id string, in CostEntryInput) (DailyCostMetric, error) {
	if err := validateEntry(in); err != nil {
		return DailyCostMetric{}, err
	}
	rates, err := s.rates.Get(ctx)
	if err != nil {
		return DailyCostMetric{}, fmt.Errorf("load rates: %w", err)
	}
	m := rates.Price(in)
	m.ID = id
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := s.repo.UpsertCostRecord(ctx, m); err != nil {
		return DailyCostMetric{}, fmt.Errorf("store cost record: %w", err)
	}
	s.notify(ctx)
	return m, nil
}

func (s *Service) notify(ctx context.Context) {
	if s.changes == nil {
		return
	}
	if err := s.changes.Bump(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("notify cost change", slog.Any("error", err))
	}
}

func validateEntry(in CostEntryInput) error {
	if err := shared.Validator().Struct(in); err != nil {
		return errors.Join(httpx.ErrValidation, ErrInvalidEntry, err)
	}
	for name, v := range map[string]bool{
		"weight_processed": in.WeightProcessed.IsNegative(),
		"processing_hours": in.ProcessingHours.IsNegative(),
		"packaging_cost":   in.PackagingCost.IsNegative(),
		"wastage_cost":     in.WastageCost.IsNegative(),
	} {
		if v {
			return errors.Join(httpx.ErrValidation, fmt.Errorf("%w: %s must not be negative", ErrInvalidEntry, name))
		}
	}
	return nil
}
