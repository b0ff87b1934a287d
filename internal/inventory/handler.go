package inventory

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
)

// Handler exposes read-only stock endpoints.
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

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/finished-goods", h.listFinishedGoods)
	r.Get("/available", h.listAvailable)
	r.Get("/low-stock", h.listLowStock)
}

func (h *Handler) listFinishedGoods(w http.ResponseWriter, r *http.Request) {
	goods, err := h.service.FinishedGoods(r.Context())
	if err != nil {
		h.logger.Error("list finished goods", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, goods)
}

func (h *Handler) listAvailable(w http.ResponseWriter, r *http.Request) {
	goods, err := h.service.AvailableGoods(r.Context())
	if err != nil {
		h.logger.Error("list available goods", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, goods)
}

func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context())
	if err != nil {
		h.logger.Error("list low stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}
