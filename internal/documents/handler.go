package documents

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
)

// Handler serves sales documents. Routes mount under /sales/{id}/documents.
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

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{type}", h.view)
	r.Post("/{type}/email", h.email)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.Types(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, types)
}

// view serves JSON, or a PDF when the type carries a .pdf suffix.
func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "type")
	asPDF := strings.HasSuffix(strings.ToLower(raw), ".pdf")
	docType, err := ParseType(strings.TrimSuffix(strings.TrimSuffix(raw, ".pdf"), ".PDF"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	saleID := chi.URLParam(r, "id")
	if !asPDF {
		v, err := h.service.View(r.Context(), saleID, docType)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, v)
		return
	}
	v, data, err := h.service.PDF(r.Context(), saleID, docType)
	if err != nil {
		h.logger.Warn("render document", slog.String("sale_id", saleID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", PDFContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", Filename(v)))
	if _, err := w.Write(data); err != nil {
		h.logger.Error("stream pdf", slog.Any("error", err))
	}
}

type emailRequest struct {
	To string `json:"to"`
}

func (h *Handler) email(w http.ResponseWriter, r *http.Request) {
	docType, err := ParseType(chi.URLParam(r, "type"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req emailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Email(r.Context(), chi.URLParam(r, "id"), docType, req.To); err != nil {
		h.logger.Warn("email document", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
