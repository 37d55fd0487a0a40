package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Settled sessions partitioned by session type and outcome
	settlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Total number of session settlements processed",
		},
		[]string{"session_type", "outcome"},
	)

	// Listener payout amounts recorded by the settlement workers, in rupees
	settlementAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_amount_rupees_total",
			Help: "Total listener payout amount settled, in rupees",
		},
		[]string{"session_type"},
	)

	// Listeners activated by the onboarding watcher
	watcherActivationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_watcher_activations_total",
			Help: "Total number of listeners activated by the onboarding watcher",
		},
	)
)

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		// Call the next handler in the chain
		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordSettlement counts one settlement attempt from the background workers
func RecordSettlement(sessionType, outcome string, amount float64) {
	settlementsTotal.With(prometheus.Labels{"session_type": sessionType, "outcome": outcome}).Inc()
	if amount > 0 {
		settlementAmount.With(prometheus.Labels{"session_type": sessionType}).Add(amount)
	}
}

// RecordWatcherActivations counts listeners promoted by the onboarding watcher
func RecordWatcherActivations(n int) {
	if n > 0 {
		watcherActivationsTotal.Add(float64(n))
	}
}
