package middleware

import (
	"net/http"
	"time"

	"github.com/vfg2006/sales-dashboard-api/pkg/metrics"
)

// Metrics registra contagem e latência da rota. O label é o padrão da rota, não a URL.
func Metrics(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			lrw := newLoggingResponseWriter(w)

			next.ServeHTTP(lrw, r)

			metrics.ObserveRequest(r.Method, route, lrw.statusCode, time.Since(startTime))
		})
	}
}
