package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/scoracle-ingest/internal/api/handler"
	"github.com/albapepper/scoracle-ingest/internal/config"
	"github.com/albapepper/scoracle-ingest/internal/db"
	"github.com/albapepper/scoracle-ingest/internal/registry"
	"github.com/albapepper/scoracle-ingest/internal/runs"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
// pool may be nil when the sink is not Postgres.
func NewRouter(tracker *runs.Tracker, reg *registry.Registry, pool *db.Pool, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "Location", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(tracker, reg, pool)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sports", h.ListSports)

		r.Route("/runs", func(r chi.Router) {
			r.Post("/", h.StartRun)
			r.Get("/", h.ListRuns)
			r.Get("/{id}", h.GetRun)
		})
	})

	return r
}
