package sales

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
	"github.com/mycoledger/mycoledger/internal/shared"
)

// Handler exposes the sales ledger over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
	limiter func(http.Handler) http.Handler
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:  logger,
		service: service,
		limiter: httprate.Limit(30, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/actions", h.actions)
	r.Get("/{id}/history", h.history)
	r.Group(func(r chi.Router) {
		r.Use(h.limiter)
		r.Post("/", h.create)
		r.Post("/{id}/transitions", h.transition)
	})
}

type lineRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	ProductLabel string `json:"product_label"`
	Packaging    string `json:"packaging"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
}

type createRequest struct {
	CustomerID    string        `json:"customer_id"`
	Items         []lineRequest `json:"items" validate:"dive"`
	PaymentMethod string        `json:"payment_method" validate:"omitempty,oneof=CASH COD CREDIT_CARD"`
	Status        string        `json:"status" validate:"omitempty,oneof=QUOTATION INVOICED"`
}

type transitionRequest struct {
	Target    string `json:"target" validate:"required"`
	Confirmed bool   `json:"confirmed"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.ListByStatus(r.Context(), Status(r.URL.Query().Get("status")))
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, recs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) actions(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, LegalActions(rec.Status))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	trail, err := h.service.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, trail)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := shared.Validator().Struct(req); err != nil {
		httpx.RespondError(w, &ValidationError{Fields: shared.FieldErrors(err), Cause: ErrValidation})
		return
	}
	items := make([]LineItem, 0, len(req.Items))
	malformed := map[string]string{}
	for i, line := range req.Items {
		price, err := shared.StrictAmount(line.UnitPrice)
		if err != nil {
			malformed[fmt.Sprintf("items[%d].unit_price", i)] = err.Error()
			continue
		}
		items = append(items, LineItem{
			ProductID:    line.ProductID,
			ProductLabel: line.ProductLabel,
			Packaging:    line.Packaging,
			Quantity:     line.Quantity,
			UnitPrice:    price,
		})
	}
	if len(malformed) > 0 {
		httpx.RespondError(w, &ValidationError{Fields: malformed, Cause: ErrInvalidPrice})
		return
	}
	rec, err := h.service.Create(r.Context(), CreateInput{
		CustomerID:     req.CustomerID,
		Items:          items,
		PaymentMethod:  PaymentMethod(req.PaymentMethod),
		InitialStatus:  Status(req.Status),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		Actor:          actorFrom(r),
	})
	if err != nil {
		h.logger.Warn("create sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := shared.Validator().Struct(req); err != nil {
		httpx.RespondError(w, &ValidationError{Fields: shared.FieldErrors(err), Cause: ErrValidation})
		return
	}
	rec, err := h.service.Transition(r.Context(), TransitionInput{
		SaleID:    chi.URLParam(r, "id"),
		Target:    Status(req.Target),
		Confirmed: req.Confirmed,
		Actor:     actorFrom(r),
	})
	if err != nil {
		h.logger.Warn("sales transition",
			slog.String("sale_id", chi.URLParam(r, "id")),
			slog.String("target", req.Target),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

// actorFrom reads the caller identity set by an upstream gateway.
func actorFrom(r *http.Request) string {
	if actor := r.Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "anonymous"
}
