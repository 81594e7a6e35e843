package parties

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
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.ListClients)
		r.Post("/", h.CreateClient)
		r.Get("/{id}", h.ShowClient)
		r.Put("/{id}", h.UpdateClient)
		r.Delete("/{id}", h.DeactivateClient)
	})
	r.Route("/importers", func(r chi.Router) {
		r.Get("/", h.ListImporters)
		r.Post("/", h.CreateImporter)
		r.Get("/{id}", h.ShowImporter)
		r.Put("/{id}", h.UpdateImporter)
		r.Delete("/{id}", h.DeactivateImporter)
	})
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	clients, total, err := h.repo.ListClients(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		h.logger.Error("list clients failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"clients": clients, "total": total})
}

func (h *Handler) ShowClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	client, err := h.repo.GetClient(r.Context(), id)
	if err != nil {
		h.respondError(w, "get client", err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var client Client
	if err := httpx.DecodeJSON(r, &client); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(client.Name) == "" {
		httpx.UnprocessableEntity(w, "client name is required")
		return
	}
	created, err := h.repo.CreateClient(r.Context(), client)
	if err != nil {
		h.respondError(w, "create client", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var client Client
	if err := httpx.DecodeJSON(r, &client); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.repo.UpdateClient(r.Context(), id, client); err != nil {
		h.respondError(w, "update client", err)
		return
	}
	updated, err := h.repo.GetClient(r.Context(), id)
	if err != nil {
		h.respondError(w, "get client", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) DeactivateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeactivateClient(r.Context(), id); err != nil {
		h.respondError(w, "deactivate client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListImporters(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	importers, total, err := h.repo.ListImporters(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		h.logger.Error("list importers failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"importers": importers, "total": total})
}

func (h *Handler) ShowImporter(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	importer, err := h.repo.GetImporter(r.Context(), id)
	if err != nil {
		h.respondError(w, "get importer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, importer)
}

func (h *Handler) CreateImporter(w http.ResponseWriter, r *http.Request) {
	var importer Importer
	if err := httpx.DecodeJSON(r, &importer); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(importer.Name) == "" {
		httpx.UnprocessableEntity(w, "importer name is required")
		return
	}
	created, err := h.repo.CreateImporter(r.Context(), importer)
	if err != nil {
		h.respondError(w, "create importer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateImporter(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var importer Importer
	if err := httpx.DecodeJSON(r, &importer); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := h.repo.UpdateImporter(r.Context(), id, importer); err != nil {
		h.respondError(w, "update importer", err)
		return
	}
	updated, err := h.repo.GetImporter(r.Context(), id)
	if err != nil {
		h.respondError(w, "get importer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) DeactivateImporter(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeactivateImporter(r.Context(), id); err != nil {
		h.respondError(w, "deactivate importer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.NotFound(w, err.Error())
		return
	}
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.Internal(w)
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
