package procurement

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	orders []PurchaseOrder
	err    error
}

func (s stubRepo) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	return s.orders, s.err
}

func po(id string, status POStatus, cost string) PurchaseOrder {
	return PurchaseOrder{ID: id, Status: status, TotalCost: decimal.RequireFromString(cost)}
}

func TestSpendCountsOrderedAndReceivedOnly(t *testing.T) {
	svc := NewService(stubRepo{orders: []PurchaseOrder{
		po("po-1", POStatusOrdered, "100.50"),
		po("po-2", POStatusReceived, "200"),
		po("po-3", POStatusComplaint, "999"),
		po("po-4", POStatusResolved, "50"),
	}})
	spend, err := svc.Spend(context.Background())
	require.NoError(t, err)
	require.Equal(t, "300.5", spend.String())

	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "po-1", pending[0].ID)
}

func TestListWrapsRepositoryError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewService(stubRepo{err: boom}).List(context.Background())
	require.ErrorIs(t, err, boom)
}
