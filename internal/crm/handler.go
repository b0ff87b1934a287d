package crm

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
)

// Handler exposes the customer directory.
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

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Get("/{id}/stats", h.stats)
	r.Get("/{id}/whatsapp", h.whatsapp)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customers, err := h.service.List(r.Context(), Filter{Type: CustomerType(q.Get("type")), Search: q.Get("q")})
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var c Customer
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), c)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Warn("customer stats", slog.String("customer_id", chi.URLParam(r, "id")), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) whatsapp(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	kind := MessageKind(r.URL.Query().Get("kind"))
	link, err := WhatsAppLink(c, kind)
	if err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Phone", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": link})
}
