package dashboarding

import (
	"errors"
	"fmt"
)

// Erros do pipeline do dashboard
var (
	ErrInputMissing = errors.New("os dois arquivos .csv são obrigatórios")
)

// Etapas do pipeline, usadas para contextualizar erros
const (
	StageLoadInventory = "load_inventory"
	StageLoadSales     = "load_sales"
	StageForecast      = "forecast"
)

// DashboardError indica em qual etapa a montagem do dashboard falhou
type DashboardError struct {
	Err   error  // Erro base
	Stage string // Etapa que falhou
}

// Error implementa a interface error
func (e *DashboardError) Error() string {
	return fmt.Sprintf("dashboard: %s: %s", e.Stage, e.Err.Error())
}

// Unwrap retorna o erro subjacente
func (e *DashboardError) Unwrap() error {
	return e.Err
}

func newDashboardError(stage string, err error) *DashboardError {
	return &DashboardError{
		Err:   err,
		Stage: stage,
	}
}
