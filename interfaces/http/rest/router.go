// Package rest wires the HTTP routes and middleware stack.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"inkpress-backend/interfaces/http/rest/handlers"
	"inkpress-backend/internal/cache"
	"inkpress-backend/internal/config"
	"inkpress-backend/internal/middleware"
	"inkpress-backend/internal/observability"
	"inkpress-backend/pkg/api"
)

// Router creates and configures the HTTP router.
type Router struct {
	cfg      *config.Config
	content  *handlers.ContentHandler
	admin    *handlers.AdminHandler
	l1       *cache.L1Store
	registry *cache.Registry
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewRouter creates a new router instance.
func NewRouter(
	cfg *config.Config,
	content *handlers.ContentHandler,
	admin *handlers.AdminHandler,
	l1 *cache.L1Store,
	registry *cache.Registry,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:      cfg,
		content:  content,
		admin:    admin,
		l1:       l1,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Timeout(rt.cfg.Server.WriteTimeout, rt.logger))
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Cache"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", rt.healthCheck)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
		rt.metrics.Registry(), promhttp.HandlerOpts{}))

	// Public read surface, behind the response cache.
	router.Group(func(r chi.Router) {
		r.Use(middleware.ResponseCache(
			middleware.ResponseCacheConfig{Enabled: rt.cfg.Cache.EnableL1},
			rt.l1, rt.registry, rt.logger,
		))
		r.Get("/posts", rt.content.ListPosts)
		r.Get("/posts/{slug}", rt.content.GetPost)
		r.Get("/pages/{slug}", rt.content.GetPage)
		r.Get("/archive", rt.content.GetArchive)
		r.Get("/navigation", rt.content.GetNavigation)
		r.Get("/settings", rt.content.GetSettings)
	})

	// Admin write surface. Authentication is mounted here by the outer
	// application; it is not part of the cache core.
	router.Route("/admin", func(r chi.Router) {
		r.Post("/posts", rt.admin.UpsertPost)
		r.Delete("/posts/{id}", rt.admin.DeletePost)
		r.Post("/pages", rt.admin.UpsertPage)
		r.Delete("/pages/{id}", rt.admin.DeletePage)
		r.Put("/settings", rt.admin.UpdateSettings)
		r.Put("/navigation", rt.admin.UpdateNavigation)
		r.Post("/cache/warm", rt.admin.WarmCache)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}
