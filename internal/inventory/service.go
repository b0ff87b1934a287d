package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mycoledger/mycoledger/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListFinishedGoods(ctx context.Context) ([]FinishedGood, error)
	ListItems(ctx context.Context) ([]Item, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// LowStockThreshold applies to items stored without their own threshold.
	LowStockThreshold int
}

// Service coordinates finished goods stock and reservations.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	cfg    ServiceConfig
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, cfg ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 50
	}
	return &Service{repo: repo, audit: audit, cfg: cfg, logger: logger}
}

type reservationGroup struct {
	goods     []FinishedGood
	requested int
	products  []string
}

// Reserve allocates stock for every line of a sale or for none of them.
// Calling it again for a sale that already holds reservations is a no-op and
// reports false.
func (s *Service) Reserve(ctx context.Context, saleID string, lines []ReservationLine) (bool, error) {
	if saleID == "" {
		return false, ErrSaleRequired
	}
	if len(lines) == 0 {
		return false, fmt.Errorf("%w: no lines to reserve", ErrInvalidQuantity)
	}
	var order []string
	demand := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return false, fmt.Errorf("%w: %s", ErrInvalidQuantity, line.ProductID)
		}
		if _, seen := demand[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		demand[line.ProductID] += line.Quantity
	}

	reserved := false
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.ListReservations(ctx, saleID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		groups := make(map[string]*reservationGroup)
		var groupOrder []string
		var shortfalls []Shortfall
		for _, productID := range order {
			goods, err := tx.LockGroupOf(ctx, productID)
			if errors.Is(err, ErrProductNotFound) {
				shortfalls = append(shortfalls, Shortfall{ProductID: productID, Label: productID, Requested: demand[productID]})
				continue
			}
			if err != nil {
				return err
			}
			key := goods[0].GroupKey()
			g, ok := groups[key]
			if !ok {
				g = &reservationGroup{goods: goods}
				groups[key] = g
				groupOrder = append(groupOrder, key)
			}
			g.requested += demand[productID]
			g.products = append(g.products, productID)
		}
		for _, key := range groupOrder {
			g := groups[key]
			available := 0
			for _, good := range g.goods {
				available += good.Quantity
			}
			if available < g.requested {
				shortfalls = append(shortfalls, Shortfall{
					ProductID: g.products[0],
					Label:     g.goods[0].Label(),
					Requested: g.requested,
					Available: available,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &InsufficientStockError{Shortfalls: shortfalls}
		}

		for _, key := range groupOrder {
			g := groups[key]
			remaining := g.requested
			for _, good := range g.goods {
				if remaining == 0 {
					break
				}
				take := min(remaining, good.Quantity)
				if take <= 0 {
					continue
				}
				if err := tx.AdjustGood(ctx, good.ID, -take); err != nil {
					return err
				}
				if err := tx.InsertReservation(ctx, Reservation{SaleID: saleID, GoodID: good.ID, Quantity: take}); err != nil {
					return err
				}
				remaining -= take
			}
		}
		reserved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if reserved {
		s.record(ctx, "inventory:reserve", saleID, map[string]any{"lines": len(lines)})
	}
	return reserved, nil
}

// Release returns every reserved unit of a sale to stock.
func (s *Service) Release(ctx context.Context, saleID string) error {
	if saleID == "" {
		return ErrSaleRequired
	}
	released := 0
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		reservations, err := tx.ListReservations(ctx, saleID)
		if err != nil {
			return err
		}
		for _, res := range reservations {
			if err := tx.AdjustGood(ctx, res.GoodID, res.Quantity); err != nil {
				return err
			}
			released += res.Quantity
		}
		return tx.DeleteReservations(ctx, saleID)
	})
	if err != nil {
		return err
	}
	if released > 0 {
		s.record(ctx, "inventory:release", saleID, map[string]any{"units": released})
	}
	return nil
}

// FinishedGoods lists all batches.
func (s *Service) FinishedGoods(ctx context.Context) ([]FinishedGood, error) {
	return s.repo.ListFinishedGoods(ctx)
}

// StockLevels lists on-hand quantity per finished good.
func (s *Service) StockLevels(ctx context.Context) ([]StockLevel, error) {
	goods, err := s.repo.ListFinishedGoods(ctx)
	if err != nil {
		return nil, err
	}
	levels := make([]StockLevel, 0, len(goods))
	for _, g := range goods {
		levels = append(levels, StockLevel{ProductID: g.ID, Quantity: g.Quantity})
	}
	return levels, nil
}

// AvailableGoods lists sellable products grouped by recipe and packaging.
func (s *Service) AvailableGoods(ctx context.Context) ([]AvailableGood, error) {
	goods, err := s.repo.ListFinishedGoods(ctx)
	if err != nil {
		return nil, err
	}
	return GroupAvailable(goods), nil
}

// LowStock lists raw material and packaging items below their threshold.
func (s *Service) LowStock(ctx context.Context) ([]Item, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return FilterLowStock(items, s.cfg.LowStockThreshold), nil
}

// GroupAvailable merges in-stock batches by recipe and packaging, keeping first-seen order.
func GroupAvailable(goods []FinishedGood) []AvailableGood {
	index := make(map[string]int)
	out := []AvailableGood{}
	for _, g := range goods {
		if g.Quantity <= 0 {
			continue
		}
		key := g.GroupKey()
		if i, ok := index[key]; ok {
			out[i].TotalQty += g.Quantity
			continue
		}
		price := g.SellingPrice
		if !price.IsPositive() {
			price = DefaultUnitPrice
		}
		index[key] = len(out)
		out = append(out, AvailableGood{Key: key, ID: g.ID, Label: g.Label(), TotalQty: g.Quantity, Price: price})
	}
	return out
}

// FilterLowStock keeps items whose quantity is under their threshold.
func FilterLowStock(items []Item, defaultThreshold int) []Item {
	out := []Item{}
	for _, it := range items {
		threshold := it.Threshold
		if threshold <= 0 {
			threshold = defaultThreshold
		}
		if it.Quantity < threshold {
			out = append(out, it)
		}
	}
	return out
}

func (s *Service) record(ctx context.Context, action, saleID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "sales_record", EntityID: saleID, Meta: meta}); err != nil {
		s.logger.Warn("inventory audit", slog.String("sale_id", saleID), slog.Any("error", err))
	}
}
