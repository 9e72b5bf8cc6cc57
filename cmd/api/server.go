package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"carteira/internal/shared/config"
	"carteira/internal/shared/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Handler      http.Handler
	Addr         string
	TLSEnabled   bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
	AllowedHosts []string
}

// NewServerConfigFromConfig creates ServerConfig from application config.
func NewServerConfigFromConfig(handler http.Handler, cfg *config.Config) ServerConfig {
	return ServerConfig{
		Handler:      handler,
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		TLSEnabled:   cfg.TLS.Enabled,
		CertPath:     cfg.TLS.CertPath,
		KeyPath:      cfg.TLS.KeyPath,
		RedirectHTTP: cfg.TLS.RedirectHTTP,
		AllowedHosts: cfg.Server.AllowedHosts,
	}
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// StartServers starts the API server and, with TLS and redirect enabled, a
// plain HTTP server on :80 that upgrades clients. Listen failures arrive on
// the returned channel.
func StartServers(scfg ServerConfig, log zerolog.Logger) (*http.Server, *http.Server, <-chan error) {
	errs := make(chan error, 2)
	serve := func(name string, listen func() error) {
		if err := listen(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("server", name).Msg("Server failed")
			errs <- err
		}
	}

	srv := newServer(scfg.Addr, scfg.Handler)

	var redirectSrv *http.Server
	if scfg.TLSEnabled && scfg.RedirectHTTP {
		redirectSrv = createRedirectServer(scfg.AllowedHosts)
		log.Info().Str("addr", redirectSrv.Addr).Msg("HTTP redirect server starting")
		go serve("redirect", redirectSrv.ListenAndServe)
	}

	if scfg.TLSEnabled {
		log.Info().Str("addr", scfg.Addr).Msg("HTTPS server starting")
		go serve("api", func() error { return srv.ListenAndServeTLS(scfg.CertPath, scfg.KeyPath) })
	} else {
		log.Info().Str("addr", scfg.Addr).Msg("HTTP server starting")
		go serve("api", srv.ListenAndServe)
	}

	return srv, redirectSrv, errs
}

// GracefulShutdown stops the redirect server first so no new clients are
// sent to the API, then drains the API server.
func GracefulShutdown(srv, redirectSrv *http.Server, timeout time.Duration, log zerolog.Logger) {
	log.Info().Msg("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, s := range []*http.Server{redirectSrv, srv} {
		if s == nil {
			continue
		}
		if err := s.Shutdown(ctx); err != nil {
			log.Error().Err(err).Str("addr", s.Addr).Msg("Error shutting down server")
		}
	}

	log.Info().Msg("Server stopped")
}

func createRedirectServer(allowedHosts []string) *http.Server {
	return newServer(":80", redirectToHTTPS(allowedHosts))
}

// redirectToHTTPS sends clients to the same path over HTTPS on the default
// port. Hosts outside allowedHosts get 400 so the redirect cannot be pointed
// at another site.
func redirectToHTTPS(allowedHosts []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}
		if !middleware.IsHostAllowed(host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}

		if name, _, err := net.SplitHostPort(host); err == nil {
			host = name
			if ip := net.ParseIP(name); ip != nil && ip.To4() == nil {
				host = "[" + name + "]"
			}
		}
		http.Redirect(w, r, "https://"+host+r.RequestURI, http.StatusMovedPermanently)
	})
}
