package dashboarding

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/aggregating"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/forecasting"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/loading"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
	"github.com/vfg2006/sales-dashboard-api/pkg/metrics"
	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
)

const recordTimeout = 5 * time.Second

type Dashboarder interface {
	Build(ctx context.Context, input domain.DashboardInput) (*domain.Dashboard, error)
}

type Service struct {
	loader     loading.Loader
	forecaster forecasting.Forecaster
	runRepo    repository.AnalysisRunRepository
	now        func() time.Time
}

// NewService monta o pipeline. runRepo pode ser nil quando o histórico está desligado.
func NewService(
	loader loading.Loader,
	forecaster forecasting.Forecaster,
	runRepo repository.AnalysisRunRepository,
) Dashboarder {
	return &Service{
		loader:     loader,
		forecaster: forecaster,
		runRepo:    runRepo,
		now:        time.Now,
	}
}

// Build executa carga, agregação e previsão a partir dos arquivos da requisição.
// Qualquer falha interrompe a montagem inteira.
func (s *Service) Build(ctx context.Context, input domain.DashboardInput) (*domain.Dashboard, error) {
	if !input.HasAllFiles() {
		metrics.IncDashboardBuild(metrics.BuildAwaitingFiles)
		return nil, ErrInputMissing
	}

	startedAt := s.now()
	dashboard, err := s.build(ctx, input)

	metrics.IncDashboardBuild(buildResult(err))
	s.record(ctx, input, dashboard, err, startedAt)

	if err != nil {
		log.ForContext(ctx).WithError(err).Warn("dashboard: montagem interrompida")
		return nil, err
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"file_inventory": input.InventoryName,
		"file_sales":     input.SalesName,
		"duration_ms":    s.now().Sub(startedAt).Milliseconds(),
	}).Infof("dashboard: %d vendas em %d dias processadas", len(dashboard.Sales.Records), len(dashboard.DailySales))

	return dashboard, nil
}

func (s *Service) build(ctx context.Context, input domain.DashboardInput) (*domain.Dashboard, error) {
	inventory, err := s.loader.LoadInventory(input.Inventory)
	if err != nil {
		return nil, newDashboardError(StageLoadInventory, err)
	}

	sales, err := s.loader.LoadSales(input.Sales)
	if err != nil {
		return nil, newDashboardError(StageLoadSales, err)
	}

	daily := aggregating.DailySales(sales.Records)

	forecastStart := time.Now()
	forecast, err := s.forecaster.Forecast(ctx, daily, domain.ForecastHorizonDays)
	metrics.ObserveForecast(time.Since(forecastStart))
	if err != nil {
		return nil, newDashboardError(StageForecast, err)
	}

	return &domain.Dashboard{
		Inventory:   inventory,
		Sales:       sales,
		DailySales:  daily,
		Forecast:    forecast,
		GeneratedAt: s.now(),
	}, nil
}

// record grava o resumo da execução. Falhas aqui só são registradas em log.
func (s *Service) record(ctx context.Context, input domain.DashboardInput, dashboard *domain.Dashboard, buildErr error, startedAt time.Time) {
	if s.runRepo == nil {
		return
	}

	id, err := utils.GenerateID()
	if err != nil {
		log.ForContext(ctx).WithError(err).Error("dashboard: erro ao gerar ID da execução")
		return
	}

	run := &domain.AnalysisRun{
		ID:            id,
		Status:        domain.AnalysisRunStatusSuccess,
		InventoryFile: input.InventoryName,
		SalesFile:     input.SalesName,
		DurationMs:    s.now().Sub(startedAt).Milliseconds(),
		CreatedAt:     startedAt,
	}

	if buildErr != nil {
		run.Status = domain.AnalysisRunStatusFailed
		run.Error = buildErr.Error()
	}

	if dashboard != nil {
		run.InventoryRows = dashboard.Inventory.Len()
		run.SalesRows = dashboard.Sales.Table.Len()
		run.DistinctDays = len(dashboard.DailySales)
		if n := len(dashboard.DailySales); n > 0 {
			first, last := dashboard.DailySales[0].Date, dashboard.DailySales[n-1].Date
			run.FirstSalesDate, run.LastSalesDate = &first, &last
		}
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.runRepo.Save(recordCtx, run); err != nil {
		log.ForContext(ctx).WithField("run_id", id).WithError(err).Error("dashboard: erro ao gravar histórico da execução")
	}
}

func buildResult(err error) string {
	var parseErr *loading.ParseError
	var dashErr *DashboardError

	switch {
	case err == nil:
		return metrics.BuildCompleted
	case errors.As(err, &parseErr):
		return metrics.BuildInvalidInput
	case errors.As(err, &dashErr) && dashErr.Stage == StageForecast:
		return metrics.BuildForecastFailed
	default:
		return metrics.BuildError
	}
}
