package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/comexsur/backoffice/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Show)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		Search: r.URL.Query().Get("search"),
		Limit:  100,
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active := v == "true"
		filters.Active = &active
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filters.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filters.Offset = n
		}
	}

	products, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products, "total": total})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var product Product
	if err := httpx.DecodeJSON(r, &product); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	created, err := h.service.Create(r.Context(), product)
	if err != nil {
		h.respondError(w, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	var product Product
	if err := httpx.DecodeJSON(r, &product); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.service.Update(r.Context(), id, product); err != nil {
		h.respondError(w, "update product", err)
		return
	}
	updated, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	removed, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.respondError(w, "delete product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"removed": removed, "deactivated": !removed})
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, err.Error())
	case errors.Is(err, ErrDuplicateCode):
		httpx.Conflict(w, err.Error())
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrInvalidPrice):
		httpx.UnprocessableEntity(w, err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Internal(w)
	}
}
