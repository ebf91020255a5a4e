package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware считает запросы и их длительность. В метку route попадает
// шаблон маршрута chi, чтобы /admin/grant/{id} не плодил серии.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := routePattern(r)
		statusClass := fmt.Sprintf("%dxx", rec.status/100)
		HTTPRequestsTotal.WithLabelValues(r.Method, route, statusClass).Inc()
		HTTPRequestDurationSeconds.WithLabelValues(r.Method, route, statusClass).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
