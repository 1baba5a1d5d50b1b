// Package metrics registra as métricas Prometheus expostas em /metrics
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados possíveis de uma montagem de dashboard
const (
	BuildCompleted      = "completed"
	BuildAwaitingFiles  = "awaiting_files"
	BuildInvalidInput   = "invalid_input"
	BuildForecastFailed = "forecast_failed"
	BuildError          = "error"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_dashboard_http_requests_total",
			Help: "Total de requisições HTTP por rota e status",
		},
		[]string{"method", "route", "status"},
	)

	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_dashboard_http_request_duration_seconds",
			Help:    "Duração das requisições HTTP em segundos",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	dashboardBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_dashboard_builds_total",
			Help: "Total de montagens do dashboard por resultado",
		},
		[]string{"result"},
	)

	forecastDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sales_dashboard_forecast_duration_seconds",
			Help:    "Tempo de ajuste e previsão do modelo em segundos",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequests, httpLatency, dashboardBuilds, forecastDuration)
}

// Handler expõe as métricas no formato Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func IncDashboardBuild(result string) {
	dashboardBuilds.WithLabelValues(result).Inc()
}

func ObserveForecast(elapsed time.Duration) {
	forecastDuration.Observe(elapsed.Seconds())
}
