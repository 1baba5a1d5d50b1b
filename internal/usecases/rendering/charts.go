// Package rendering monta os gráficos interativos do dashboard.
// Nenhuma transformação de dados acontece aqui: as séries chegam prontas.
package rendering

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
)

const (
	TrendSeriesName      = "Vendas Diárias"
	ForecastSeriesName   = "Previsão"
	HistoricalSeriesName = "Vendas Históricas"

	trendColor = "blue"
)

// Chart é qualquer gráfico do go-echarts que sabe se escrever como HTML
type Chart interface {
	Render(w io.Writer) error
}

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     "100%",
		Height:    "420px",
	})
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// TrendChart monta o gráfico de linha com marcadores das vendas diárias
func TrendChart(series []domain.DailySalesPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts("Tendência de Vendas Diárias"),
		charts.WithTitleOpts(opts.Title{Title: "Tendência de Vendas Diárias"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Data"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Vendas"}),
	)

	dates := make([]string, 0, len(series))
	values := make([]opts.LineData, 0, len(series))
	for _, point := range series {
		dates = append(dates, formatDate(point.Date))
		values = append(values, opts.LineData{Value: point.Count})
	}

	line.SetXAxis(dates).
		AddSeries(TrendSeriesName, values,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: trendColor}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: trendColor}),
		)

	return line
}

// ForecastChart sobrepõe a linha prevista aos pontos históricos
func ForecastChart(history []domain.DailySalesPoint, forecast []domain.ForecastPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts("Previsão de Vendas para os Próximos 30 Dias"),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Previsão de Vendas para os Próximos %d Dias", domain.ForecastHorizonDays)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Data"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Vendas"}),
	)

	dates := make([]string, 0, len(forecast))
	predicted := make([]opts.LineData, 0, len(forecast))
	for _, point := range forecast {
		dates = append(dates, formatDate(point.Date))
		predicted = append(predicted, opts.LineData{Value: utils.RoundWithTwoDecimalPlace(point.Value)})
	}

	line.SetXAxis(dates).
		AddSeries(ForecastSeriesName, predicted,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)

	// Os pontos históricos usam [data, valor] para se alinhar ao eixo de categorias da previsão
	observed := make([]opts.ScatterData, 0, len(history))
	for _, point := range history {
		observed = append(observed, opts.ScatterData{
			Value:      []interface{}{formatDate(point.Date), point.Count},
			Symbol:     "circle",
			SymbolSize: 8,
		})
	}

	scatter := charts.NewScatter()
	scatter.SetXAxis(dates).AddSeries(HistoricalSeriesName, observed)

	line.Overlap(scatter)

	return line
}

// RenderHTML escreve o gráfico como um documento HTML completo
func RenderHTML(chart Chart) (string, error) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering: erro ao renderizar gráfico: %w", err)
	}
	return buf.String(), nil
}
