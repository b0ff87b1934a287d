package sales

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	r.Route("/sales", NewHandler(nil, f.svc).MountRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateAndTransition(t *testing.T) {
	f := newFixture(20)
	h := newTestRouter(f)

	res := do(t, h, http.MethodPost, "/sales", `{"customer_id":"cus-acme","status":"QUOTATION","payment_method":"COD",
		"items":[{"product_id":"fg-shiitake-100","product_label":"Dried Shiitake","quantity":10,"unit_price":"15.00"}]}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var created Record
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.Equal(t, StatusQuotation, created.Status)
	assert.Equal(t, "150.00", created.TotalAmount.StringFixed(2))

	res = do(t, h, http.MethodPost, "/sales/"+created.ID+"/transitions", `{"target":"INVOICED"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Stock will be reserved")

	res = do(t, h, http.MethodPost, "/sales/"+created.ID+"/transitions", `{"target":"INVOICED","confirmed":true}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	res = do(t, h, http.MethodGet, "/sales/"+created.ID+"/actions", "")
	require.Equal(t, http.StatusOK, res.Code)
	var actions []Action
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &actions))
	require.Len(t, actions, 2)
}

func TestHandlerErrorMapping(t *testing.T) {
	f := newFixture(5)
	h := newTestRouter(f)
	rec := quotation(t, f)

	res := do(t, h, http.MethodPost, "/sales/"+rec.ID+"/transitions", `{"target":"INVOICED","confirmed":true}`)
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	var problem map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	shortfalls, ok := problem["shortfalls"].([]any)
	require.True(t, ok)
	require.Len(t, shortfalls, 1)
	assert.EqualValues(t, 5, shortfalls[0].(map[string]any)["missing"])

	res = do(t, h, http.MethodPost, "/sales/"+rec.ID+"/transitions", `{"target":"PAID"}`)
	require.Equal(t, http.StatusConflict, res.Code)
	assert.Contains(t, res.Body.String(), `"current":"QUOTATION"`)

	res = do(t, h, http.MethodGet, "/sales/nope", "")
	require.Equal(t, http.StatusNotFound, res.Code)

	res = do(t, h, http.MethodPost, "/sales", `{"customer_id":"cus-acme","items":[]}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "cart is empty")

	res = do(t, h, http.MethodPost, "/sales", `{"customer_id":"cus-acme","status":"PAID","items":[]}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestHandlerIdempotencyConflict(t *testing.T) {
	f := newFixture(50)
	h := newTestRouter(f)
	body := `{"customer_id":"cus-acme","items":[{"product_id":"fg-shiitake-100","quantity":1,"unit_price":"15"}]}`

	res := do(t, h, http.MethodPost, "/sales", body, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusCreated, res.Code)
	res = do(t, h, http.MethodPost, "/sales", body, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusConflict, res.Code)
}

func TestHandlerListByStatus(t *testing.T) {
	f := newFixture(50)
	h := newTestRouter(f)
	quotation(t, f)
	res := do(t, h, http.MethodPost, "/sales", `{"customer_id":"cus-acme","items":[{"product_id":"fg-shiitake-100","quantity":1,"unit_price":"15"}]}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = do(t, h, http.MethodGet, "/sales?status=QUOTATION", "")
	require.Equal(t, http.StatusOK, res.Code)
	var recs []Record
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, StatusQuotation, recs[0].Status)
}

func TestHandlerHistory(t *testing.T) {
	f := newFixture(50)
	h := newTestRouter(f)
	rec := quotation(t, f)

	res := do(t, h, http.MethodGet, "/sales/"+rec.ID+"/history", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"action":"sales:create"`)

	res = do(t, h, http.MethodGet, "/sales/nope/history", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestHandlerRejectsMalformedUnitPrice(t *testing.T) {
	f := newFixture(50)
	h := newTestRouter(f)

	for _, price := range []string{"abc", "15,00.x", ""} {
		body := `{"customer_id":"cus-acme","status":"QUOTATION","items":[{"product_id":"fg-shiitake-100","quantity":1,"unit_price":"` + price + `"}]}`
		res := do(t, h, http.MethodPost, "/sales", body)
		require.Equal(t, http.StatusBadRequest, res.Code, "unit_price %q", price)
		assert.Contains(t, res.Body.String(), "items[0].unit_price", price)
	}

	recs, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestHandlerMergesRepeatedProducts(t *testing.T) {
	f := newFixture(50)
	h := newTestRouter(f)

	res := do(t, h, http.MethodPost, "/sales", `{"customer_id":"cus-acme","status":"QUOTATION","items":[
		{"product_id":"fg-shiitake-100","product_label":"Dried Shiitake","quantity":3,"unit_price":"15.00"},
		{"product_id":"fg-shiitake-100","quantity":2,"unit_price":"15.00"}]}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var created Record
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	require.Len(t, created.Items, 1)
	assert.Equal(t, 5, created.Items[0].Quantity)
	assert.Equal(t, "Dried Shiitake", created.Items[0].ProductLabel)
	assert.Equal(t, "75.00", created.TotalAmount.StringFixed(2))
}
