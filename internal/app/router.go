package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/comexsur/backoffice/internal/analytics"
	"github.com/comexsur/backoffice/internal/documents"
	"github.com/comexsur/backoffice/internal/masterdata/parties"
	"github.com/comexsur/backoffice/internal/masterdata/products"
	"github.com/comexsur/backoffice/internal/masterdata/units"
	"github.com/comexsur/backoffice/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	DocumentsHandler *documents.Handler
	ProductsHandler  *products.Handler
	UnitsHandler     *units.Handler
	PartiesHandler   *parties.Handler
	AnalyticsHandler *analytics.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.DocumentsHandler.MountRoutes(r)
		params.ProductsHandler.MountRoutes(r)
		params.UnitsHandler.MountRoutes(r)
		params.PartiesHandler.MountRoutes(r)
		params.AnalyticsHandler.MountRoutes(r)
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}
