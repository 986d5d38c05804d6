package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ecopay/ecoledger/internal/adapter/http/handler"
	"github.com/ecopay/ecoledger/internal/adapter/http/middleware"
	"github.com/ecopay/ecoledger/internal/infrastructure/auth"
	"github.com/ecopay/ecoledger/internal/infrastructure/metrics"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler     *handler.WalletHandler
	ListingHandler    *handler.ListingHandler
	OrderHandler      *handler.OrderHandler
	ConversionHandler *handler.ConversionHandler
	AdminHandler      *handler.AdminHandler
	HealthHandler     *handler.HealthHandler
	JWTManager        *auth.JWTManager
	IdempotencyStore  usecase.IdempotencyStore
	Metrics           *metrics.Metrics
	Logger            zerolog.Logger
	RateLimit         float64
	RateBurst         int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	r.Use(middleware.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
		MaxAge:         300,
	}))

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Limit)
		}

		// The catalogue is browsable without a token.
		r.Get("/marketplace/listings", cfg.ListingHandler.ListAvailable)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.Metrics).Wrap)
			}

			// Wallets
			r.Route("/wallets", func(r chi.Router) {
				r.Get("/me", cfg.WalletHandler.Me)
				r.Get("/me/entries", cfg.WalletHandler.Entries)
				r.Post("/transfer", cfg.WalletHandler.Transfer)
				r.Post("/topup/initiate", cfg.WalletHandler.TopUpInitiate)
				r.Post("/topup/confirm", cfg.WalletHandler.TopUpConfirm)
			})

			// Marketplace
			r.Post("/marketplace/listings", cfg.ListingHandler.Create)
			r.Get("/marketplace/listings/{id}", cfg.ListingHandler.Get)
			r.Get("/marketplace/orders", cfg.OrderHandler.ListMine)
			r.Post("/marketplace/orders", cfg.OrderHandler.Create)
			r.Get("/marketplace/orders/{id}", cfg.OrderHandler.Get)
			r.Post("/marketplace/orders/{id}/confirm", cfg.OrderHandler.Confirm)

			// Eco-points
			r.Route("/eco-points", func(r chi.Router) {
				r.Get("/balance", cfg.ConversionHandler.Balance)
				r.Post("/convert", cfg.ConversionHandler.Convert)
				r.Get("/conversions", cfg.ConversionHandler.List)
				r.Get("/conversions/{id}", cfg.ConversionHandler.Get)
			})

			// Ledger
			r.Get("/ledger/consistency", cfg.AdminHandler.Consistency)

			// Admin
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/listings/pending", cfg.AdminHandler.PendingListings)
				r.Post("/listings/{id}/approve", cfg.AdminHandler.ApproveListing)
				r.Post("/listings/{id}/reject", cfg.AdminHandler.RejectListing)
				r.Post("/listings/{id}/suspend", cfg.AdminHandler.SuspendListing)
				r.Post("/listings/{id}/reactivate", cfg.AdminHandler.ReactivateListing)
				r.Post("/accounts/{handle}/freeze", cfg.AdminHandler.FreezeAccount)
				r.Post("/orders/sweep", cfg.AdminHandler.SweepExpiredOrders)
			})
		})
	})

	return r
}
