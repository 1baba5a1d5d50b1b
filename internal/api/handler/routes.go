package handler

import (
	"net/http"

	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-dashboard-api/pkg/metrics"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: metrics.Handler(),
		},
	}
}

func Dashboard(service dashboarding.Dashboarder, maxUploadBytes int64) []router.Route {
	return []router.Route{
		{
			Path:    "/",
			Method:  http.MethodGet,
			Handler: DashboardPage(service, maxUploadBytes),
		},
		{
			Path:    "/",
			Method:  http.MethodPost,
			Handler: DashboardPage(service, maxUploadBytes),
		},
		{
			Path:    "/v1/dashboard",
			Method:  http.MethodPost,
			Handler: BuildDashboard(service, maxUploadBytes),
		},
	}
}

func Runs(runRepo repository.AnalysisRunRepository, cleaner HistoryCleaner) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/runs",
			Method:  http.MethodGet,
			Handler: ListRuns(runRepo),
		},
		{
			Path:    "/v1/runs/cleanup",
			Method:  http.MethodPost,
			Handler: RunHistoryCleanup(cleaner),
		},
		{
			Path:    "/v1/runs/cleanup/status",
			Method:  http.MethodGet,
			Handler: GetHistoryCleanupStatus(cleaner),
		},
	}
}
