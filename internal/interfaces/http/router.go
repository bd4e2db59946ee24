// Package http wires the appeal API route tree and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/internal/interfaces/http/handlers"
	"github.com/careloop/appealgen/internal/interfaces/http/middleware"
)

// MetricsHandler both observes requests and serves the scrape endpoint.
type MetricsHandler interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.
type RouterConfig struct {
	AppealHandler *handlers.AppealHandler
	PayerHandler  *handlers.PayerHandler
	HealthHandler *handlers.HealthHandler

	Logger      logging.Logger
	Metrics     MetricsHandler
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
}

// NewRouter constructs the route tree: global middleware, public probes, the
// scrape endpoint, and the versioned API group.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerAppealRoutes(api, cfg.AppealHandler)
		registerPayerRoutes(api, cfg.PayerHandler)
	})

	return r
}

// registerAppealRoutes mounts appeal endpoints under /appeals.
func registerAppealRoutes(r chi.Router, h *handlers.AppealHandler) {
	if h == nil {
		return
	}
	r.Route("/appeals", func(ar chi.Router) {
		ar.Get("/", h.List)
		ar.Post("/text", h.GenerateFromText)
		ar.Post("/upload", h.GenerateFromDocument)
		ar.Post("/extract", h.Extract)

		ar.Route("/{appealID}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Get("/letter", h.DownloadLetter)
			item.Patch("/status", h.UpdateStatus)
		})
	})
}

// registerPayerRoutes mounts payer reference-data endpoints under /payers.
func registerPayerRoutes(r chi.Router, h *handlers.PayerHandler) {
	if h == nil {
		return
	}
	r.Route("/payers", func(pr chi.Router) {
		pr.Get("/", h.List)
		pr.Route("/{payerName}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Get("/requirements", h.Requirements)
		})
	})
}
