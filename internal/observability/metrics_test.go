package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/mycoledger/mycoledger/internal/jobs"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestJobMetricsShareTheRegistry(t *testing.T) {
	metrics := NewMetrics()
	require.NoError(t, jobmetrics.NewMetrics(metrics.Registerer()).Track("documents:email").End(nil))

	body := scrape(t, metrics)
	assert.Contains(t, body, `mycoledger_jobs_total{job="documents:email",status="success"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	metrics := NewMetrics()
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/sales/S-1", "/sales/S-2", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, metrics)
	assert.Contains(t, body, `mycoledger_http_requests_total{code="418",route="/sales/{id}"} 2`)
	assert.Contains(t, body, `mycoledger_http_requests_total{code="200",route="/healthz"} 1`)
	assert.Contains(t, body, `mycoledger_http_request_duration_seconds_bucket{route="/sales/{id}"`)
}

func TestMiddlewareWithoutRouteContext(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/raw", nil).WithContext(context.Background())
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, scrape(t, metrics), `mycoledger_http_requests_total{code="200",route="unknown"} 1`)
}

func TestLedgerCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveSalesTransition("INVOICED", "SHIPPED")
	metrics.ObserveSalesTransition("INVOICED", "SHIPPED")
	metrics.ObserveSalesTransition("", "QUOTATION")
	metrics.ObserveDashboardBuild(30 * time.Millisecond)

	body := scrape(t, metrics)
	assert.Contains(t, body, `mycoledger_sales_transitions_total{from="INVOICED",to="SHIPPED"} 2`)
	assert.Contains(t, body, `mycoledger_sales_transitions_total{from="",to="QUOTATION"} 1`)
	assert.Contains(t, body, "mycoledger_dashboard_build_seconds_count 1")

	var nilMetrics *Metrics
	nilMetrics.ObserveSalesTransition("a", "b")
	nilMetrics.ObserveDashboardBuild(time.Second)
	assert.Equal(t, http.StatusServiceUnavailable, func() int {
		rr := httptest.NewRecorder()
		nilMetrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		return rr.Code
	}())
}
