package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/techhub-commerce/admin-gateway/api/controllers"
	"github.com/techhub-commerce/admin-gateway/api/middleware"
	"github.com/techhub-commerce/admin-gateway/internal/sessions"
	"github.com/techhub-commerce/admin-gateway/pkg/config"
	"github.com/techhub-commerce/admin-gateway/pkg/logger"
	"github.com/techhub-commerce/admin-gateway/pkg/metrics"
	pkgredis "github.com/techhub-commerce/admin-gateway/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	Registry       *sessions.Registry
	Catalog        controllers.CategoryLister
	Metrics        *metrics.PipelineMetrics
	IdemStore      pkgredis.IdempotencyStore
	Pingers        map[string]controllers.Pinger
	MetricsHandler http.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(nil),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireBearer(logg))

		r.Get("/categories", controllers.ListCategories(deps.Catalog, logg))

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", controllers.CreateDraft(deps.Registry, logg))

			r.Route("/{draftId}", func(r chi.Router) {
				r.Get("/", controllers.GetDraft(deps.Registry, logg))
				r.Patch("/", controllers.PatchDraft(deps.Registry, logg))
				r.Delete("/", controllers.DeleteDraft(deps.Registry, logg))

				r.Route("/specs", func(r chi.Router) {
					r.Post("/", controllers.AddSpec(deps.Registry, logg))
					r.Patch("/{index}", controllers.UpdateSpec(deps.Registry, logg))
					r.Delete("/{index}", controllers.RemoveSpec(deps.Registry, logg))
				})

				r.Route("/images", func(r chi.Router) {
					r.Post("/", controllers.StageImages(deps.Registry, cfg.Media.MaxUploadBytes(), deps.Metrics, logg))
					r.Get("/", controllers.ListImages(deps.Registry, logg))
					r.Delete("/{position}", controllers.RemoveImage(deps.Registry, logg))
				})

				r.With(middleware.Idempotency(deps.IdemStore, logg)).
					Post("/submit", controllers.SubmitDraft(deps.Registry, logg))
			})
		})
	})

	return r
}
