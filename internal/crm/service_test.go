package crm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycoledger/mycoledger/internal/sales"
)

type memRepo struct {
	customers map[string]Customer
}

func (m *memRepo) ListCustomers(ctx context.Context) ([]Customer, error) {
	out := []Customer{}
	for _, id := range []string{"cus-acme", "cus-siti", "cus-tan"} {
		if c, ok := m.customers[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRepo) GetCustomer(ctx context.Context, id string) (Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return c, nil
}

func (m *memRepo) UpsertCustomer(ctx context.Context, c Customer) error {
	m.customers[c.ID] = c
	return nil
}

type ledger []sales.Record

func (l ledger) List(ctx context.Context) ([]sales.Record, error) { return l, nil }

func newRepo() *memRepo {
	return &memRepo{customers: map[string]Customer{
		"cus-acme": {ID: "cus-acme", Name: "Acme Co", Type: CustomerB2B, Contact: "+60 12-345 6789", Email: "buyer@acme.test"},
		"cus-siti": {ID: "cus-siti", Name: "Siti Aminah", Type: CustomerB2C, Contact: "123"},
	}}
}

func sale(id, customer string, status sales.Status, day int, items ...sales.LineItem) sales.Record {
	return sales.Record{
		ID:          id,
		CustomerID:  customer,
		Items:       items,
		TotalAmount: sales.TotalOf(items),
		Status:      status,
		DateCreated: time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		InvoiceID:   "INV-" + id,
	}
}

func line(label string, qty int, price string) sales.LineItem {
	return sales.LineItem{ProductID: label, ProductLabel: label, Packaging: "100g", Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestComputeStats(t *testing.T) {
	l := []sales.Record{
		sale("s1", "cus-acme", sales.StatusPaid, 1, line("Shiitake", 40, "15")),
		sale("s2", "cus-acme", sales.StatusDelivered, 5, line("Oyster", 10, "20"), line("Shiitake", 5, "15")),
		sale("s3", "cus-acme", sales.StatusQuotation, 9, line("Oyster", 60, "20")),
		sale("s4", "cus-siti", sales.StatusPaid, 10, line("Shiitake", 1, "15")),
	}
	st := ComputeStats("cus-acme", l)
	assert.Equal(t, 3, st.OrderCount)
	assert.Equal(t, "875.00", st.TotalSpent.StringFixed(2))
	assert.False(t, st.IsVIP)
	assert.Equal(t, "Oyster (100g)", st.FavoriteProduct)
	require.NotNil(t, st.LastOrderDate)
	assert.Equal(t, 9, st.LastOrderDate.Day())
	require.Len(t, st.History, 3)
	assert.Equal(t, "s3", st.History[0].SaleID)
	assert.Equal(t, "s1", st.History[2].SaleID)
}

func TestComputeStatsVIPAndEmpty(t *testing.T) {
	st := ComputeStats("cus-acme", []sales.Record{sale("s1", "cus-acme", sales.StatusPaid, 1, line("Shiitake", 100, "15"))})
	assert.True(t, st.IsVIP)

	empty := ComputeStats("cus-new", nil)
	assert.Zero(t, empty.OrderCount)
	assert.Nil(t, empty.LastOrderDate)
	assert.Empty(t, empty.FavoriteProduct)
	assert.NotNil(t, empty.History)
}

func TestListFilters(t *testing.T) {
	svc := NewService(newRepo(), ledger(nil), nil)
	out, err := svc.List(context.Background(), Filter{Type: CustomerB2C})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "cus-siti", out[0].ID)

	out, err = svc.List(context.Background(), Filter{Search: "ACME"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "cus-acme", out[0].ID)
}

func TestCreateValidates(t *testing.T) {
	repo := newRepo()
	svc := NewService(repo, ledger(nil), nil)
	_, err := svc.Create(context.Background(), Customer{Email: "not-an-email"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	c, err := svc.Create(context.Background(), Customer{Name: "Tan Farm", Type: CustomerB2B})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", c.Status)
	assert.True(t, strings.HasPrefix(c.ID, "cust-"))
	assert.Contains(t, repo.customers, c.ID)
}

func TestSalesDirectory(t *testing.T) {
	dir := NewSalesDirectory(newRepo())
	snap, err := dir.Lookup(context.Background(), "cus-acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Co", snap.Name)
	assert.Equal(t, "+60 12-345 6789", snap.Phone)

	_, err = dir.Lookup(context.Background(), "nobody")
	require.ErrorIs(t, err, sales.ErrUnknownCustomer)
}

func TestWhatsAppLink(t *testing.T) {
	link, err := WhatsAppLink(Customer{Name: "Acme Co", Contact: "+60 12-345 6789"}, MessageUpdate)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/60123456789?text=Hi%20Acme%20Co%2C%20just"))

	_, err = WhatsAppLink(Customer{Contact: "123"}, MessagePromo)
	require.ErrorIs(t, err, ErrInvalidPhone)
}

func TestStatsHandler(t *testing.T) {
	svc := NewService(newRepo(), ledger{sale("s1", "cus-acme", sales.StatusPaid, 1, line("Shiitake", 2, "15"))}, nil)
	r := chi.NewRouter()
	r.Route("/customers", NewHandler(nil, svc).MountRoutes)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/customers/cus-acme/stats", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"order_count":1`)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/customers/ghost/stats", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
}
