package httpx

import (
	"net/http"
	"time"

	"github.com/gitnudge/portal/internal/observability/metrics"
)

// RequestMetrics records Prometheus request metrics labelled by the mux
// pattern that matched, keeping label cardinality bounded.
func RequestMetrics(m *metrics.HTTPMetrics, mux *http.ServeMux) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics.IsScrapeOrProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			_, route := mux.Handler(r)

			m.RequestsInProgress.Inc()
			defer m.RequestsInProgress.Dec()

			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			m.RecordRequest(route, r.Method, ww.status, time.Since(start))
		})
	}
}
