package domain

import "time"

const (
	AnalysisRunStatusSuccess = "success"
	AnalysisRunStatusFailed  = "failed"
)

// AnalysisRun é o resumo de uma execução do dashboard.
// Guarda apenas metadados: tabelas, séries e previsões nunca são persistidas.
type AnalysisRun struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	InventoryFile  string     `json:"inventory_file"`
	SalesFile      string     `json:"sales_file"`
	InventoryRows  int        `json:"inventory_rows"`
	SalesRows      int        `json:"sales_rows"`
	DistinctDays   int        `json:"distinct_days"`
	FirstSalesDate *time.Time `json:"first_sales_date,omitempty"`
	LastSalesDate  *time.Time `json:"last_sales_date,omitempty"`
	DurationMs     int64      `json:"duration_ms"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AnalysisRunFilters filtra a listagem do histórico de execuções
type AnalysisRunFilters struct {
	StartDate *time.Time
	Limit     uint64
}
