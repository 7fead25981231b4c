package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nomadhomes/bookingledger/internal/adapter/http/handler"
	"github.com/nomadhomes/bookingledger/internal/adapter/http/middleware"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/metrics"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler *handler.AccountHandler
	ListingHandler *handler.ListingHandler
	BookingHandler *handler.BookingHandler
	LedgerHandler  *handler.LedgerHandler
	HealthHandler  *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	// TokenVerifier enables bearer authentication on /api/v1 when set.
	TokenVerifier middleware.TokenVerifier

	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, cfg.Metrics))
		}

		// Keys are checked after authentication so an unauthenticated
		// request cannot claim one.
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotency.Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/entries", cfg.AccountHandler.ListEntries)
			r.Get("/{id}/bookings", cfg.BookingHandler.ListByAccount)
			r.Post("/{id}/points", cfg.AccountHandler.GrantPoints)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Post("/", cfg.ListingHandler.Create)
			r.Get("/", cfg.ListingHandler.List)
			r.Get("/{id}", cfg.ListingHandler.Get)
			r.Post("/{id}/availability", cfg.ListingHandler.AddAvailability)
			r.Get("/{id}/availability", cfg.ListingHandler.ListAvailability)
			r.Get("/{id}/quote", cfg.BookingHandler.Quote)
			r.Get("/{id}/bookings", cfg.BookingHandler.ListByListing)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", cfg.BookingHandler.Create)
			r.Get("/", cfg.BookingHandler.List)
			r.Get("/{id}", cfg.BookingHandler.Get)
			r.Patch("/{id}", cfg.BookingHandler.Update)
			r.Delete("/{id}", cfg.BookingHandler.Delete)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
