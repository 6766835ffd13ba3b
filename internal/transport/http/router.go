// Package httptransport assembles the process router: the shared middleware
// chain, CORS, health and readiness probes, metrics, and every domain
// handler's routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"landing/internal/platform/metrics"
	"landing/internal/platform/middleware"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// Deps is everything NewRouter needs.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	ClientOrigins  []string
	TrustedProxies []netip.Prefix
	RequestTimeout time.Duration
	Readiness      []ReadinessCheck
	Handlers       []Registrar
}

// NewRouter wires all public endpoints behind the common middleware chain.
// Probes and /metrics skip CORS and the request timeout.
func NewRouter(d Deps) http.Handler {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata(d.TrustedProxies))

	health := newHealthHandler(d.Readiness, d.Logger)
	r.Get("/healthz", health.handleLive)
	r.Get("/readyz", health.handleReady)
	if d.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(d.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Logger(d.Logger))
		if d.Metrics != nil {
			r.Use(middleware.Latency(d.Metrics))
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.ClientOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Use(middleware.Timeout(d.RequestTimeout))

		r.Get("/api/health", health.handleLive)
		for _, h := range d.Handlers {
			h.Register(r)
		}
	})
	return r
}
