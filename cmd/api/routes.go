package main

import (
	"net/http"

	"github.com/rs/zerolog"

	httphandlers "carteira/internal/interfaces/http"
	"carteira/internal/shared/config"
	"carteira/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", httphandlers.HandleHealth)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protect := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	mux.Handle("GET /api/accounts", protect(deps.AccountHandler.HandleListAccounts))
	mux.Handle("POST /api/accounts", protect(deps.AccountHandler.HandleCreateAccount))
	mux.Handle("GET /api/accounts/{id}", protect(deps.AccountHandler.HandleGetAccount))
	mux.Handle("PATCH /api/accounts/{id}", protect(deps.AccountHandler.HandleUpdateAccount))
	mux.Handle("DELETE /api/accounts/{id}", protect(deps.AccountHandler.HandleDisableAccount))

	mux.Handle("POST /api/installments/preview", protect(deps.InstallmentHandler.HandlePreview))
	mux.Handle("POST /api/impact", protect(deps.ImpactHandler.HandleEvaluate))

	mux.Handle("POST /api/transactions", protect(deps.TransactionHandler.HandleCreateTransaction))
	mux.Handle("GET /api/transactions/{id}", protect(deps.TransactionHandler.HandleGetTransaction))
	mux.Handle("PUT /api/transactions/{id}", protect(deps.TransactionHandler.HandleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", protect(deps.TransactionHandler.HandleDeleteTransaction))

	// RouteMetrics reads the matched pattern back from the request, so it
	// must wrap the mux directly.
	handler := middleware.RouteMetrics(mux)
	handler = middleware.CORS(cfg.Server.AllowedHosts)(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)

	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Info().Msg("TLS security middleware enabled (HSTS)")
	}

	return handler
}
