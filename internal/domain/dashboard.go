package domain

import (
	"io"
	"time"
)

// DashboardInput são os dois arquivos enviados pelo usuário em uma renderização
type DashboardInput struct {
	Inventory     io.Reader
	InventoryName string
	Sales         io.Reader
	SalesName     string
}

// HasAllFiles indica se os dois arquivos foram enviados
func (in DashboardInput) HasAllFiles() bool {
	return in.Inventory != nil && in.Sales != nil
}

// Dashboard é o resultado completo de uma execução do pipeline
type Dashboard struct {
	Inventory   *Table
	Sales       *SalesTable
	DailySales  []DailySalesPoint
	Forecast    []ForecastPoint
	GeneratedAt time.Time
}
