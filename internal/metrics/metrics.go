// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Collectors register with the default registry at init through promauto,
// so callers only use the Record* helpers below.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sakif/filmorate/internal/model"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_http_requests_total",
			Help: "Total number of HTTP requests by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmorate_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmorate_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Domain
	FeedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_feed_events_total",
			Help: "Total number of feed events recorded",
		},
		[]string{"event_type", "operation"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_recommendations_total",
			Help: "Recommendation requests by outcome (hit: at least one film, empty: none)",
		},
		[]string{"outcome"},
	)
)

// RecordHTTPRequest records one finished request. route is the chi route
// pattern ("/users/{id}"), not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge up or down.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

func RecordFeedEvent(eventType model.EventType, op model.Operation) {
	FeedEventsTotal.WithLabelValues(string(eventType), string(op)).Inc()
}

func RecordRecommendation(found int) {
	outcome := "hit"
	if found == 0 {
		outcome = "empty"
	}
	RecommendationsTotal.WithLabelValues(outcome).Inc()
}
