package units

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/comexsur/backoffice/internal/platform/httpx"
)

type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/units", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	units, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list units failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"units": units})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var unit Unit
	if err := httpx.DecodeJSON(r, &unit); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(unit.Name) == "" {
		httpx.UnprocessableEntity(w, "unit name is required")
		return
	}
	created, err := h.repo.Create(r.Context(), unit)
	if err != nil {
		h.logger.Error("create unit failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid unit id")
		return
	}
	var unit Unit
	if err := httpx.DecodeJSON(r, &unit); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.repo.Update(r.Context(), id, unit); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, err.Error())
			return
		}
		h.logger.Error("update unit failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	unit.ID = id
	httpx.JSON(w, http.StatusOK, unit)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid unit id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, err.Error())
			return
		}
		h.logger.Error("delete unit failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
