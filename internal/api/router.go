package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/rentclaim/rentclaim/internal/api/handlers"
	"github.com/rentclaim/rentclaim/internal/api/middleware"
	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/db"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(database *db.DB, cfg *config.Config, closeDeps *handlers.CloseDeps) chi.Router {
	r := chi.NewRouter()

	// Middleware stack (order matters)
	r.Use(middleware.RequestLogging)
	r.Use(middleware.CORS)

	slog.Info("router initialized",
		"middleware", []string{"requestLogging", "cors"},
	)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthHandler(cfg, Version, closeDeps.Signer != nil))
		r.Get("/scan/{wallet}", handlers.ScanHandler(closeDeps.Scanner))
		r.Post("/close", handlers.CloseHandler(closeDeps))
		r.Get("/stats/global", handlers.GlobalStatsHandler(database))
		r.Get("/stats/user/{wallet}", handlers.UserStatsHandler(database))
		r.Get("/leaderboard", handlers.LeaderboardHandler(database))
		r.Get("/transactions/{wallet}", handlers.WalletTransactionsHandler(database))
	})

	return r
}
