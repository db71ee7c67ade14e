package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/photoshare-api/internal/metrics"
)

// unmatchedRoute labels requests no route matched, so random 404 paths
// cannot blow up the label cardinality.
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route in Prometheus.
//
// ROUTE LABEL:
// The label is chi's route PATTERN ("/auth/github/callback"), never the raw
// URL path. Chi only knows the pattern after routing, so it is read after
// next.ServeHTTP returns.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := wrap(w)

		next.ServeHTTP(rec, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
