package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carteira/internal/shared/config"
	"carteira/internal/shared/logger"
	"carteira/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.WithFields(logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}), map[string]interface{}{
		"service": cfg.Telemetry.ServiceName,
		"driver":  cfg.Database.Driver,
	})
	ctx := logger.WithContext(context.Background(), log)

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  os.Getenv("ENVIRONMENT"),
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		MetricsPort:  cfg.Telemetry.MetricsPort,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Error().Err(err).Msg("Telemetry shutdown failed")
		}
	}()

	deps, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	handler := SetupRoutes(deps, cfg, log)
	srv, redirectSrv, serverErrs := StartServers(NewServerConfigFromConfig(handler, cfg), log)

	// Wait for interrupt signal or a server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err = <-serverErrs:
		log.Error().Err(err).Msg("Server failed")
	}

	GracefulShutdown(srv, redirectSrv, 30*time.Second, log)
	return err
}
