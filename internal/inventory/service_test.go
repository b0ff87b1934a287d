package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	goods        []FinishedGood
	items        []Item
	reservations map[string][]Reservation
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo(goods ...FinishedGood) *memoryRepo {
	return &memoryRepo{goods: goods, reservations: make(map[string][]Reservation)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	goods := append([]FinishedGood(nil), r.goods...)
	reservations := make(map[string][]Reservation, len(r.reservations))
	for k, v := range r.reservations {
		reservations[k] = append([]Reservation(nil), v...)
	}
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.goods = goods
		r.reservations = reservations
		return err
	}
	return nil
}

func (r *memoryRepo) ListFinishedGoods(ctx context.Context) ([]FinishedGood, error) {
	return append([]FinishedGood(nil), r.goods...), nil
}

func (r *memoryRepo) ListItems(ctx context.Context) ([]Item, error) {
	return append([]Item(nil), r.items...), nil
}

func (r *memoryRepo) quantity(id string) int {
	for _, g := range r.goods {
		if g.ID == id {
			return g.Quantity
		}
	}
	return -1
}

func (tx *memoryTx) LockGroupOf(ctx context.Context, productID string) ([]FinishedGood, error) {
	var key string
	for _, g := range tx.repo.goods {
		if g.ID == productID {
			key = g.GroupKey()
		}
	}
	if key == "" {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	var out []FinishedGood
	for _, g := range tx.repo.goods {
		if g.GroupKey() == key {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProducedAt.Before(out[j].ProducedAt) })
	return out, nil
}

func (tx *memoryTx) AdjustGood(ctx context.Context, goodID string, delta int) error {
	for i := range tx.repo.goods {
		if tx.repo.goods[i].ID == goodID {
			if tx.repo.goods[i].Quantity+delta < 0 {
				return ErrInsufficientStock
			}
			tx.repo.goods[i].Quantity += delta
			return nil
		}
	}
	return ErrProductNotFound
}

func (tx *memoryTx) InsertReservation(ctx context.Context, res Reservation) error {
	tx.repo.reservations[res.SaleID] = append(tx.repo.reservations[res.SaleID], res)
	return nil
}

func (tx *memoryTx) ListReservations(ctx context.Context, saleID string) ([]Reservation, error) {
	return append([]Reservation(nil), tx.repo.reservations[saleID]...), nil
}

func (tx *memoryTx) DeleteReservations(ctx context.Context, saleID string) error {
	delete(tx.repo.reservations, saleID)
	return nil
}

func shiitake(id string, qty int) FinishedGood {
	return FinishedGood{ID: id, RecipeName: "Dried Shiitake", PackagingType: "100g", Quantity: qty}
}

func TestReserveAllOrNothing(t *testing.T) {
	repo := newMemoryRepo(shiitake("fg-1", 20), FinishedGood{ID: "fg-2", RecipeName: "Oyster Chips", PackagingType: "50g", Quantity: 3})
	svc := NewService(repo, nil, ServiceConfig{}, nil)

	_, err := svc.Reserve(context.Background(), "sale-1", []ReservationLine{
		{ProductID: "fg-1", Quantity: 10},
		{ProductID: "fg-2", Quantity: 5},
	})
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Len(t, stockErr.Shortfalls, 1)
	require.Equal(t, "fg-2", stockErr.Shortfalls[0].ProductID)
	require.Equal(t, 2, stockErr.Shortfalls[0].Missing())

	require.Equal(t, 20, repo.quantity("fg-1"))
	require.Equal(t, 3, repo.quantity("fg-2"))
	require.Empty(t, repo.reservations)
}

func TestReserveShortfallDetail(t *testing.T) {
	repo := newMemoryRepo(shiitake("fg-1", 5))
	svc := NewService(repo, nil, ServiceConfig{}, nil)

	_, err := svc.Reserve(context.Background(), "sale-1", []ReservationLine{{ProductID: "fg-1", Quantity: 10}})
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.Equal(t, Shortfall{ProductID: "fg-1", Label: "Dried Shiitake (100g)", Requested: 10, Available: 5}, stockErr.Shortfalls[0])
}

func TestReserveIsIdempotentPerSale(t *testing.T) {
	repo := newMemoryRepo(shiitake("fg-1", 20))
	svc := NewService(repo, nil, ServiceConfig{}, nil)
	ctx := context.Background()
	lines := []ReservationLine{{ProductID: "fg-1", Quantity: 10}}

	created, err := svc.Reserve(ctx, "sale-1", lines)
	require.NoError(t, err)
	require.True(t, created)
	created, err = svc.Reserve(ctx, "sale-1", lines)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, 10, repo.quantity("fg-1"))
}

func TestReserveSpansBatchesAndRelease(t *testing.T) {
	repo := newMemoryRepo(shiitake("fg-1", 4), shiitake("fg-2", 8))
	svc := NewService(repo, nil, ServiceConfig{}, nil)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "sale-1", []ReservationLine{
		{ProductID: "fg-1", Quantity: 6},
		{ProductID: "fg-1", Quantity: 3},
	})
	require.NoError(t, err)
	require.Equal(t, 0, repo.quantity("fg-1"))
	require.Equal(t, 3, repo.quantity("fg-2"))
	require.Len(t, repo.reservations["sale-1"], 2)

	require.NoError(t, svc.Release(ctx, "sale-1"))
	require.Equal(t, 4, repo.quantity("fg-1"))
	require.Equal(t, 8, repo.quantity("fg-2"))
	require.Empty(t, repo.reservations["sale-1"])
}

func TestReserveUnknownProduct(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, ServiceConfig{}, nil)
	_, err := svc.Reserve(context.Background(), "sale-1", []ReservationLine{{ProductID: "missing", Quantity: 1}})
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestReserveRejectsBadInput(t *testing.T) {
	svc := NewService(newMemoryRepo(shiitake("fg-1", 5)), nil, ServiceConfig{}, nil)
	ctx := context.Background()
	_, err := svc.Reserve(ctx, "", []ReservationLine{{ProductID: "fg-1", Quantity: 1}})
	require.ErrorIs(t, err, ErrSaleRequired)
	_, err = svc.Reserve(ctx, "s", []ReservationLine{{ProductID: "fg-1", Quantity: 0}})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.Reserve(ctx, "s", nil)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestGroupAvailable(t *testing.T) {
	goods := []FinishedGood{
		shiitake("fg-1", 4),
		{ID: "fg-2", RecipeName: "Oyster Chips", PackagingType: "50g", Quantity: 0},
		shiitake("fg-3", 6),
		{ID: "fg-4", RecipeName: "Oyster Chips", PackagingType: "50g", Quantity: 2, SellingPrice: decimal.RequireFromString("9.90")},
	}
	out := GroupAvailable(goods)
	require.Len(t, out, 2)
	require.Equal(t, "fg-1", out[0].ID)
	require.Equal(t, 10, out[0].TotalQty)
	require.True(t, out[0].Price.Equal(DefaultUnitPrice))
	require.Equal(t, "fg-4", out[1].ID)
	require.Equal(t, "9.9", out[1].Price.String())
}

func TestLowStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.items = []Item{
		{ID: "i-1", Name: "Pouch 100g", Quantity: 10, Threshold: 50},
		{ID: "i-2", Name: "Salt", Quantity: 80, Threshold: 50},
		{ID: "i-3", Name: "Labels", Quantity: 20},
	}
	svc := NewService(repo, nil, ServiceConfig{LowStockThreshold: 25}, nil)
	items, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "i-1", items[0].ID)
	require.Equal(t, "i-3", items[1].ID)
}
