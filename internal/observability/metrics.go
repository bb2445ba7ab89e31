// Package observability holds the Prometheus collectors and the OpenTelemetry
// tracer setup of managerh.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auth attempt results.
const (
	AuthResultSuccess = "success"
	AuthResultFailed  = "failed"
	AuthResultLimited = "rate_limited"
	AuthResultError   = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "managerh_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "managerh_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	assignmentConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "managerh_assignment_conflicts_total",
		Help: "Reassignments rejected because the employee already holds a computer",
	})

	assignmentChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "managerh_assignment_changes_total",
		Help: "Committed holder changes by kind",
	}, []string{"kind"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "managerh_auth_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	workerPoolRunning = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "managerh_worker_pool_running",
		Help: "Running goroutines per worker pool",
	}, []string{"pool"})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveAssignmentConflict counts one rejected reassignment.
func ObserveAssignmentConflict() {
	assignmentConflicts.Inc()
}

// ObserveAssignmentChange counts one committed holder change ("assigned", "unassigned").
func ObserveAssignmentChange(kind string) {
	assignmentChanges.WithLabelValues(kind).Inc()
}

// ObserveAuthAttempt counts one login attempt.
func ObserveAuthAttempt(result string) {
	authAttempts.WithLabelValues(result).Inc()
}

// SetWorkerPoolRunning publishes pool occupancy.
func SetWorkerPoolRunning(pool string, running int) {
	workerPoolRunning.WithLabelValues(pool).Set(float64(running))
}

// GinMiddleware instruments requests. The route label is the matched pattern
// (e.g. /api/v1/computers/:id) so IDs do not explode label cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
