package financehttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mycoledger/mycoledger/internal/finance"
	"github.com/mycoledger/mycoledger/internal/finance/export"
	"github.com/mycoledger/mycoledger/internal/finance/svg"
	"github.com/mycoledger/mycoledger/internal/platform/httpx"
	"github.com/mycoledger/mycoledger/internal/shared"
)

const requestTimeout = 5 * time.Second

// FinanceService defines the dashboard data contract used by the handler.
type FinanceService interface {
	Dashboard(ctx context.Context) (finance.Dashboard, error)
	Snapshot(ctx context.Context) (finance.Snapshot, error)
	GetBudget(ctx context.Context, month string) (*finance.Budget, error)
	PutBudget(ctx context.Context, month string, in finance.BudgetInput) (finance.Budget, error)
}

// Handler coordinates HTTP requests for the finance dashboard.
type Handler struct {
	logger  *slog.Logger
	service FinanceService
	bufPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the finance HTTP handler.
func NewHandler(logger *slog.Logger, service FinanceService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger, service: service, now: time.Now}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dash, err := h.service.Dashboard(ctx)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}

func (h *Handler) handleExpensePie(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dash, err := h.service.Dashboard(ctx)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	slices := make([]svg.PieSlice, 0, len(dash.Slices))
	for _, s := range dash.Slices {
		slices = append(slices, svg.PieSlice{Label: s.Label, Color: s.Color, Percentage: s.Percentage, Path: s.Path})
	}
	out, err := svg.Pie(360, 240, slices, svg.PieOpts{
		Title:       "Expense Distribution",
		Description: fmt.Sprintf("Overall cost %s", shared.FormatAmountGrouped(dash.Summary.TotalOverallCost)),
		ShowLegend:  true,
	})
	if err != nil {
		h.handleServerError(w, "render expense pie", err)
		return
	}
	writeSVG(w, string(out))
}

func (h *Handler) handleWeeklyBars(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dash, err := h.service.Dashboard(ctx)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	series := make([]float64, len(dash.Weekly))
	labels := make([]string, len(dash.Weekly))
	for i, d := range dash.Weekly {
		series[i] = d.Revenue.InexactFloat64()
		labels[i] = d.Label
	}
	out, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, series, labels, svg.BarOpts{
		Title:       "Weekly Revenue",
		Description: "Paid revenue for the last seven days",
	})
	if err != nil {
		h.handleServerError(w, "render weekly bars", err)
		return
	}
	writeSVG(w, string(out))
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap, err := h.service.Snapshot(ctx)
	if err != nil {
		h.handleServerError(w, "load snapshot", err)
		return
	}
	dash := finance.Build(snap, h.now())

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()
	if err := export.WriteLedgerXLSX(buf, export.LedgerPayload{Snapshot: snap, Dashboard: dash}); err != nil {
		h.handleServerError(w, "write xlsx", err)
		return
	}

	filename := fmt.Sprintf("mycoledger-finance-%s.xlsx", snap.Month)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("stream xlsx", slog.Any("error", err))
	}
}

func (h *Handler) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	b, err := h.service.GetBudget(r.Context(), month)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if b == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no budget set for "+month)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) handlePutBudget(w http.ResponseWriter, r *http.Request) {
	var in finance.BudgetInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := shared.Validator().Struct(in); err != nil {
		httpx.ProblemWith(w, http.StatusBadRequest, "Validation Failed", "invalid budget",
			map[string]any{"fields": shared.FieldErrors(err)})
		return
	}
	b, err := h.service.PutBudget(r.Context(), chi.URLParam(r, "month"), in)
	if err != nil {
		h.logger.Warn("put budget", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) handleServerError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("finance handler", slog.String("op", op), slog.Any("error", err))
	httpx.RespondError(w, err)
}

func writeSVG(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
