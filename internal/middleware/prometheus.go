package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/filmorate/internal/metrics"
)

// unmatchedRoute labels requests that no route handled (404/405), so random
// probe paths do not each create a new time series.
const unmatchedRoute = "unmatched"

// Metrics records request count, latency and in-flight requests.
//
// The route label is chi's matched pattern ("/films/{id}/like/{userId}"),
// read after the handler ran, because chi fills the route context while
// routing.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		wrapped := wrap(w)

		next.ServeHTTP(wrapped, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		metrics.RecordHTTPRequest(r.Method, route, wrapped.statusCode, time.Since(start))
	})
}
