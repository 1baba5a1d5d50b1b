package aggregating

import (
	"sort"
	"time"

	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

// DailySales agrupa as vendas por dia do calendário e conta os registros de cada dia.
// O resultado é ordenado por data, sem dias repetidos e sem preencher dias sem venda.
func DailySales(records []domain.SalesRecord) []domain.DailySalesPoint {
	counts := make(map[time.Time]int)
	for _, record := range records {
		counts[domain.TruncateToDate(record.Timestamp)]++
	}

	series := make([]domain.DailySalesPoint, 0, len(counts))
	for date, count := range counts {
		series = append(series, domain.DailySalesPoint{
			Date:  date,
			Count: count,
		})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series
}
