package costing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
)

// Handler exposes cost entry and aggregated cost listings.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers costing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listAggregated)
	r.Get("/raw", h.listRaw)
	r.Post("/", h.create)
	r.Get("/rates", h.getRates)
	r.Put("/rates", h.putRates)
	r.Put("/{id}", h.update)
}

func (h *Handler) listAggregated(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListAggregated(r.Context())
	if err != nil {
		h.logger.Error("list aggregated costs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listRaw(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListRaw(r.Context())
	if err != nil {
		h.logger.Error("list raw costs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CostEntryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.RecordCost(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in CostEntryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.UpdateCost(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) getRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.Rates(r.Context())
	if err != nil {
		h.logger.Error("load rates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rates)
}

func (h *Handler) putRates(w http.ResponseWriter, r *http.Request) {
	var rates Rates
	if err := httpx.DecodeJSON(r, &rates); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.SetRates(r.Context(), rates); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rates)
}
