// Package metrics exposes Prometheus instrumentation for the HTTP layer
// and the search pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "propertybw",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propertybw",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SearchesTotal counts searches by resolution mode: "text", "ai" or
	// "fallback" when the AI path degraded to local matching.
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propertybw",
			Name:      "searches_total",
			Help:      "Total number of searches by resolution mode",
		},
		[]string{"mode"},
	)

	// AlertEventsTotal counts published saved-search alert events.
	AlertEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "propertybw",
			Name:      "alert_events_total",
			Help:      "Total saved-search alert events published",
		},
	)
)

var registered bool

// Register registers all metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(AlertEventsTotal)
	registered = true
}

// Middleware records request duration and count per route. The registered
// route pattern is used as the path label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
