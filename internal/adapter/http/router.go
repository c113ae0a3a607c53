package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/fundme/internal/adapter/http/handler"
	"github.com/iho/fundme/internal/adapter/http/middleware"
	"github.com/iho/fundme/internal/infrastructure/auth"
	"github.com/iho/fundme/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	FundingHandler   *handler.FundingHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	HTTPMetrics      *middleware.HTTPMetrics
	MetricsHandler   http.Handler
	JWTManager       *auth.JWTManager
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CallerIdentity(cfg.JWTManager))
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
			}

			r.Post("/fund", cfg.FundingHandler.Fund)
			r.Post("/withdraw", cfg.FundingHandler.Withdraw)
		})

		r.Get("/ledger", cfg.FundingHandler.Ledger)
		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		r.Get("/price-feed", cfg.FundingHandler.PriceFeed)
		r.Get("/quote", cfg.FundingHandler.Quote)
		r.Get("/funders", cfg.FundingHandler.Funders)
		r.Get("/funders/{index}", cfg.FundingHandler.Funder)
		r.Get("/funded/{address}", cfg.FundingHandler.Funded)
		r.Get("/contributions", cfg.FundingHandler.Contributions)
		r.Get("/withdrawals", cfg.FundingHandler.Withdrawals)
	})

	return r
}
