package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UnmatchedRoute labels requests that matched no route, so arbitrary paths
// cannot create new series.
const UnmatchedRoute = "unmatched"

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route pattern and status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// RequestTotal counts HTTP requests by method, route pattern and status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// CacheLookups counts read-through cache lookups by cache name and result (hit, miss).
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postboard_cache_lookups_total",
			Help: "Read-through cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	// AuthFailures counts rejected authentications by reason (token, user, credentials).
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postboard_auth_failures_total",
			Help: "Rejected authentication attempts by reason",
		},
		[]string{"reason"},
	)

	// PostWrites counts committed post writes by operation (create, delete).
	PostWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postboard_post_writes_total",
			Help: "Committed post writes by operation",
		},
		[]string{"op"},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, CacheLookups, AuthFailures, PostWrites)
	})
}

// RecordRequest records one finished request. route is the router's pattern
// (e.g. /posts/{id}), never the raw path.
func RecordRequest(method, route string, statusCode int, elapsed time.Duration) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

func CacheHit(cache string) {
	CacheLookups.WithLabelValues(cache, "hit").Inc()
}

func CacheMiss(cache string) {
	CacheLookups.WithLabelValues(cache, "miss").Inc()
}

// AuthFailure records a rejected authentication; reason is token, user or credentials.
func AuthFailure(reason string) {
	AuthFailures.WithLabelValues(reason).Inc()
}

// PostWritten records a committed post write; op is create or delete.
func PostWritten(op string) {
	PostWrites.WithLabelValues(op).Inc()
}
