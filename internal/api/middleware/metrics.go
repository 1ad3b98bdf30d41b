// Package middleware provides HTTP middleware components for the Recall
// server: Prometheus metrics and session authentication.
package middleware

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// httpRequestsTotal counts the total number of HTTP requests processed.
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recall_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDurationSeconds tracks the duration of HTTP requests.
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recall_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// activeStreams tracks chat completions currently being relayed.
	activeStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "recall_active_streams",
			Help: "Number of chat completion streams currently open",
		},
	)

	// searchCacheHits counts queries served from the search cache.
	searchCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recall_search_cache_hits_total",
			Help: "Queries answered from the search result cache",
		},
	)

	// searchCacheMisses counts queries that reached the search provider.
	searchCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recall_search_cache_misses_total",
			Help: "Queries that had to reach the search provider",
		},
	)

	// memoryCalls counts memory-service calls by operation and outcome.
	memoryCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recall_memory_service_calls_total",
			Help: "Memory service calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	activeStreamCount int64
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		activeStreams,
		searchCacheHits,
		searchCacheMisses,
		memoryCalls,
	)
}

// PrometheusMiddleware records request counters and latencies per route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDurationSeconds.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() gin.HandlerFunc {
	handler := promhttp.Handler()
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// StreamStarted marks a relay as open.
func StreamStarted() {
	atomic.AddInt64(&activeStreamCount, 1)
	activeStreams.Set(float64(atomic.LoadInt64(&activeStreamCount)))
}

// StreamEnded marks a relay as closed.
func StreamEnded() {
	atomic.AddInt64(&activeStreamCount, -1)
	activeStreams.Set(float64(atomic.LoadInt64(&activeStreamCount)))
}

// RecordSearchCacheHit counts a query served from cache.
func RecordSearchCacheHit() { searchCacheHits.Inc() }

// RecordSearchCacheMiss counts a query that reached the provider.
func RecordSearchCacheMiss() { searchCacheMisses.Inc() }

// RecordMemoryCall counts one memory-service call.
func RecordMemoryCall(operation string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	memoryCalls.WithLabelValues(operation, outcome).Inc()
}
