package domain

import "time"

// ForecastHorizonDays é a janela fixa de previsão após a última data histórica
const ForecastHorizonDays = 30

// ForecastPoint é o valor previsto pelo modelo para uma data
type ForecastPoint struct {
	Date       time.Time
	Value      float64
	Historical bool
}
