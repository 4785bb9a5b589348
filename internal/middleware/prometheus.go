package middleware

import (
	"net/http"
	"time"

	"github.com/crucial707/postboard/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// Prometheus records duration and count per request, labelled with the chi
// route pattern that served it rather than the raw path. Scrapes of /metrics
// are not recorded.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrap, r)

		route := routeLabel(r)
		if route == "/metrics" {
			return
		}
		metrics.RecordRequest(r.Method, route, wrap.status, time.Since(start))
	})
}

// routeLabel reads the pattern chi matched. It is only complete once the
// request has been routed.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return metrics.UnmatchedRoute
}
