package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts handled requests by method, route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indie_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by method and route template.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "indie_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// DownloadsTotal counts recorded downloads.
	DownloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indie_downloads_total",
		Help: "Total number of recorded game downloads",
	})

	// TogglesTotal counts toggle outcomes by relation and action (added/removed).
	TogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indie_toggles_total",
		Help: "Total number of toggle operations by relation and outcome",
	}, []string{"relation", "action"})

	// NotificationFailures counts best-effort notifications that could not be stored or published.
	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indie_notification_failures_total",
		Help: "Notifications dropped because storage or publish failed",
	}, []string{"stage"})

	// WebSocketConnections is the number of open notification streams.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "indie_websocket_connections",
		Help: "Number of open notification websocket connections",
	})
)

// Middleware records request count and latency keyed by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
