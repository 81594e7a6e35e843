package analytics

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/comexsur/backoffice/internal/masterdata/parties"
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
	r.Get("/search", h.Search)
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/clients/{id}/top-products", h.topProducts(parties.PartyClient))
		r.Get("/importers/{id}/top-products", h.topProducts(parties.PartyImporter))
	})
}

func (h *Handler) topProducts(kind parties.PartyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || partyID <= 0 {
			httpx.BadRequest(w, "invalid party id")
			return
		}
		n := TopNDetail
		if v := r.URL.Query().Get("n"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed <= 0 || parsed > TopNDetail {
				httpx.BadRequest(w, "invalid n")
				return
			}
			n = parsed
		}
		rollups, err := h.service.TopProducts(r.Context(), kind, partyID, n)
		if err != nil {
			h.logger.Error("top products failed", slog.String("kind", string(kind)),
				slog.Int64("party_id", partyID), slog.Any("error", err))
			httpx.Internal(w)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"top_products": rollups})
	}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("search failed", slog.String("query", query), slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
