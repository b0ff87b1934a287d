package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	salesTransitions *prometheus.CounterVec
	dashboardBuild   prometheus.Histogram
}

// NewMetrics menyiapkan registry terpisah beserta metrik HTTP, penjualan dan dashboard.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mycoledger_http_requests_total",
			Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
		}, []string{"route", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mycoledger_http_request_duration_seconds",
			Help:    "Durasi permintaan HTTP per route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		salesTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mycoledger_sales_transitions_total",
			Help: "Jumlah perpindahan status penjualan. from kosong berarti record baru.",
		}, []string{"from", "to"}),
		dashboardBuild: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mycoledger_dashboard_build_seconds",
			Help:    "Durasi memuat snapshot ledger untuk dashboard saat cache kosong.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat jumlah dan durasi permintaan per pola route chi.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveSalesTransition menghitung perpindahan status penjualan.
func (m *Metrics) ObserveSalesTransition(from, to string) {
	if m == nil {
		return
	}
	m.salesTransitions.WithLabelValues(from, to).Inc()
}

// ObserveDashboardBuild mencatat durasi pembangunan dashboard.
func (m *Metrics) ObserveDashboardBuild(d time.Duration) {
	if m == nil {
		return
	}
	m.dashboardBuild.Observe(d.Seconds())
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
