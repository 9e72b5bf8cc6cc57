package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Telemetry traces every API request under service and records the otelhttp
// server metrics. Health probes are not traced.
func Telemetry(service string) func(http.Handler) http.Handler {
	return otelhttp.NewMiddleware(service,
		otelhttp.WithFilter(traced),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + service
		}),
	)
}

func traced(r *http.Request) bool {
	return r.URL.Path != "/health"
}
