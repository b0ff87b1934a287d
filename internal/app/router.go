package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mycoledger/mycoledger/internal/costing"
	"github.com/mycoledger/mycoledger/internal/crm"
	"github.com/mycoledger/mycoledger/internal/documents"
	financehttp "github.com/mycoledger/mycoledger/internal/finance/http"
	"github.com/mycoledger/mycoledger/internal/inventory"
	"github.com/mycoledger/mycoledger/internal/observability"
	"github.com/mycoledger/mycoledger/internal/procurement"
	"github.com/mycoledger/mycoledger/internal/sales"
	"github.com/mycoledger/mycoledger/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SalesHandler       *sales.Handler
	DocumentsHandler   *documents.Handler
	CustomersHandler   *crm.Handler
	InventoryHandler   *inventory.Handler
	ProcurementHandler *procurement.Handler
	CostingHandler     *costing.Handler
	FinanceHandler     *financehttp.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with the ledger routes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.SalesHandler != nil {
		r.Route("/sales", func(r chi.Router) {
			params.SalesHandler.MountRoutes(r)
			if params.DocumentsHandler != nil {
				r.Route("/{id}/documents", params.DocumentsHandler.MountRoutes)
			}
		})
	}
	if params.CustomersHandler != nil {
		r.Route("/customers", params.CustomersHandler.MountRoutes)
	}
	if params.InventoryHandler != nil {
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
	}
	if params.ProcurementHandler != nil {
		r.Route("/procurement", params.ProcurementHandler.MountRoutes)
	}
	if params.CostingHandler != nil {
		r.Route("/costs", params.CostingHandler.MountRoutes)
	}
	if params.FinanceHandler != nil {
		r.Route("/finance", params.FinanceHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
