// Package telemetry wires OpenTelemetry for the API: traces go to an OTLP
// collector over gRPC and metrics are scraped from a Prometheus endpoint.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

// ShutdownFunc flushes exporters and stops the metrics endpoint.
type ShutdownFunc func(context.Context) error

type shutdowns []func(context.Context) error

func (s shutdowns) run(ctx context.Context) error {
	var errs []error
	// Reverse order: the metrics endpoint stops before its provider.
	for i := len(s) - 1; i >= 0; i-- {
		if err := s[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Init installs the global meter and tracer providers and starts the
// /metrics endpoint. With cfg.Enabled false the no-op globals stay and the
// returned ShutdownFunc does nothing.
func Init(ctx context.Context, cfg Config, log zerolog.Logger) (ShutdownFunc, error) {
	var stack shutdowns

	if !cfg.Enabled {
		log.Info().Msg("telemetry disabled")
		return stack.run, nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return stack.run, err
	}

	meterProvider, err := newMeterProvider(res)
	if err != nil {
		return stack.run, err
	}
	otel.SetMeterProvider(meterProvider)
	stack = append(stack, meterProvider.Shutdown)

	tracerProvider, err := newTracerProvider(ctx, res, cfg.OTLPEndpoint)
	if err != nil {
		return stack.run, err
	}
	otel.SetTracerProvider(tracerProvider)
	stack = append(stack, tracerProvider.Shutdown)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricsSrv := newMetricsServer(cfg.MetricsPort)
	go func() {
		log.Info().Str("addr", metricsSrv.Addr).Msg("metrics server listening")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	stack = append(stack, metricsSrv.Shutdown)

	log.Info().
		Str("service", cfg.ServiceName).
		Str("otlp_endpoint", cfg.OTLPEndpoint).
		Msg("OpenTelemetry initialized")

	return stack.run, nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// newMeterProvider exports through the default Prometheus registry, which
// promhttp.Handler serves.
func newMeterProvider(res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	), nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource, endpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	), nil
}

func newMetricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
