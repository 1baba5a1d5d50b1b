package rendering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

func sampleHistory() []domain.DailySalesPoint {
	return []domain.DailySalesPoint{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Count: 2},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Count: 1},
	}
}

func TestTrendChart(t *testing.T) {
	html, err := RenderHTML(TrendChart(sampleHistory()))
	require.NoError(t, err)

	assert.Contains(t, html, "2024-01-01")
	assert.Contains(t, html, "2024-01-02")
	assert.Contains(t, html, "Vendas")
	assert.Contains(t, html, "echarts")
}

func TestForecastChart(t *testing.T) {
	history := sampleHistory()
	forecast := []domain.ForecastPoint{
		{Date: history[0].Date, Value: 2, Historical: true},
		{Date: history[1].Date, Value: 1, Historical: true},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Value: 0.3333333},
	}

	html, err := RenderHTML(ForecastChart(history, forecast))
	require.NoError(t, err)

	assert.Contains(t, html, "2024-01-03")
	assert.Contains(t, html, "0.33")
	assert.NotContains(t, html, "0.3333333")
	assert.Contains(t, html, "scatter")
	assert.Contains(t, html, "line")
}

func TestTrendChart_EmptySeries(t *testing.T) {
	html, err := RenderHTML(TrendChart(nil))
	require.NoError(t, err)
	assert.NotEmpty(t, html)
}
