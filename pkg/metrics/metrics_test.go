package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncDashboardBuild(t *testing.T) {
	before := testutil.ToFloat64(dashboardBuilds.WithLabelValues(BuildCompleted))
	IncDashboardBuild(BuildCompleted)
	assert.Equal(t, before+1, testutil.ToFloat64(dashboardBuilds.WithLabelValues(BuildCompleted)))
}

func TestHandler(t *testing.T) {
	ObserveRequest(http.MethodGet, "/healthcheck", http.StatusOK, 10*time.Millisecond)
	ObserveForecast(2 * time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sales_dashboard_http_requests_total")
	assert.Contains(t, rec.Body.String(), "sales_dashboard_forecast_duration_seconds")
}
