// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served requests by route pattern.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logtrends_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logtrends_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// StoreQueryDuration observes analytics query latency.
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logtrends_store_query_duration_seconds",
			Help:    "Duration of storage queries in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"query", "status"},
	)

	// ResponseCacheTotal counts response cache lookups by result.
	ResponseCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logtrends_response_cache_total",
			Help: "Response cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// ObserveQuery records one storage query.
func ObserveQuery(query string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreQueryDuration.WithLabelValues(query, status).Observe(d.Seconds())
}

// ObserveRequest records one HTTP request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
