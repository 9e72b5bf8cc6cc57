package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RouteMetrics records a request counter and a latency histogram keyed by
// the matched ServeMux pattern, so /api/accounts/{id} is one series rather
// than one per account.
func RouteMetrics(next http.Handler) http.Handler {
	meter := otel.Meter("carteira/http")
	requests, _ := meter.Int64Counter("http.route.requests",
		metric.WithDescription("Requests served per route and status"))
	latency, _ := meter.Float64Histogram("http.route.duration",
		metric.WithDescription("Request duration per route"),
		metric.WithUnit("ms"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		attrs := metric.WithAttributes(
			attribute.String("http.route", route),
			attribute.String("http.status_code", strconv.Itoa(status)),
		)
		requests.Add(r.Context(), 1, attrs)
		latency.Record(r.Context(), float64(time.Since(start).Microseconds())/1000, attrs)
	})
}
