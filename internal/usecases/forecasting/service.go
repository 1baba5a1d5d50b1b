package forecasting

import (
	"context"
	"time"

	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
	"gonum.org/v1/gonum/stat"
)

const (
	minHistoryPoints = 2

	// weeklySeasonalityMinSpanDays liga a sazonalidade semanal quando o histórico cobre ao menos duas semanas
	weeklySeasonalityMinSpanDays = 14

	day = 24 * time.Hour
)

// Forecaster gera a previsão diária a partir da série histórica
type Forecaster interface {
	// Forecast retorna um ponto para cada data histórica seguido de horizon dias consecutivos
	Forecast(ctx context.Context, history []domain.DailySalesPoint, horizon int) ([]domain.ForecastPoint, error)
}

// Model é um modelo aditivo simples: tendência linear + sazonalidade semanal.
// Não há ajuste de hiperparâmetros, feriados ou intervalos de incerteza.
type Model struct {
	weeklyMinSpanDays int
}

func NewModel() Forecaster {
	return &Model{
		weeklyMinSpanDays: weeklySeasonalityMinSpanDays,
	}
}

type fittedModel struct {
	origin    time.Time
	intercept float64
	slope     float64
	weekly    [7]float64
}

func (f *fittedModel) predict(date time.Time) float64 {
	t := daysBetween(f.origin, date)
	return f.intercept + f.slope*t + f.weekly[date.Weekday()]
}

func (m *Model) Forecast(ctx context.Context, history []domain.DailySalesPoint, horizon int) ([]domain.ForecastPoint, error) {
	if horizon < 0 {
		return nil, ErrInvalidHorizon
	}

	if len(history) < minHistoryPoints {
		return nil, ErrInsufficientHistory
	}

	for i := 1; i < len(history); i++ {
		if !history[i-1].Date.Before(history[i].Date) {
			return nil, ErrUnorderedHistory
		}
	}

	fitted := m.fit(history)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	last := history[len(history)-1].Date
	forecast := make([]domain.ForecastPoint, 0, len(history)+horizon)

	for _, point := range history {
		forecast = append(forecast, domain.ForecastPoint{
			Date:       point.Date,
			Value:      fitted.predict(point.Date),
			Historical: true,
		})
	}

	for i := 1; i <= horizon; i++ {
		date := last.AddDate(0, 0, i)
		forecast = append(forecast, domain.ForecastPoint{
			Date:  date,
			Value: fitted.predict(date),
		})
	}

	log.Component("forecasting").WithContext(ctx).WithFields(log.Fields{
		"history_points": len(history),
		"horizon":        horizon,
		"slope":          fitted.slope,
	}).Debug("forecasting: modelo ajustado")

	return forecast, nil
}

func (m *Model) fit(history []domain.DailySalesPoint) *fittedModel {
	origin := history[0].Date

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i, point := range history {
		xs[i] = daysBetween(origin, point.Date)
		ys[i] = float64(point.Count)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	fitted := &fittedModel{
		origin:    origin,
		intercept: intercept,
		slope:     slope,
	}

	span := daysBetween(origin, history[len(history)-1].Date)
	if span >= float64(m.weeklyMinSpanDays) {
		fitted.weekly = weeklyEffects(history, xs, ys, intercept, slope)
	}

	return fitted
}

// weeklyEffects calcula o resíduo médio de cada dia da semana, centralizado em zero
// entre os dias observados. Dias da semana sem observação ficam com efeito zero e
// seguem exatamente a tendência.
func weeklyEffects(history []domain.DailySalesPoint, xs, ys []float64, intercept, slope float64) [7]float64 {
	var residuals [7][]float64
	for i, point := range history {
		weekday := point.Date.Weekday()
		residuals[weekday] = append(residuals[weekday], ys[i]-(intercept+slope*xs[i]))
	}

	var effects [7]float64
	present := make([]float64, 0, 7)
	for weekday, values := range residuals {
		if len(values) == 0 {
			continue
		}
		effects[weekday] = stat.Mean(values, nil)
		present = append(present, effects[weekday])
	}

	center := stat.Mean(present, nil)
	for weekday, values := range residuals {
		if len(values) == 0 {
			continue
		}
		effects[weekday] -= center
	}

	return effects
}

func daysBetween(from, to time.Time) float64 {
	return float64(to.Sub(from)) / float64(day)
}
