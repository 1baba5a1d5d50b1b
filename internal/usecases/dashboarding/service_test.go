package dashboarding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/forecasting"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/loading"
	"go.uber.org/mock/gomock"
)

const (
	inventoryCSV = "Produto,Quantidade\nPomada,10\nÓleo,3\n"
	salesCSV     = "Data e Hora,Cliente,Serviço\n" +
		"2024-01-01 09:00:00,João,Corte\n" +
		"2024-01-01 14:00:00,Maria,Barba\n" +
		"2024-01-02 10:00:00,Pedro,Corte\n"
)

func newInput(inventory, sales string) domain.DashboardInput {
	return domain.DashboardInput{
		Inventory:     strings.NewReader(inventory),
		InventoryName: "estoque.csv",
		Sales:         strings.NewReader(sales),
		SalesName:     "vendas.csv",
	}
}

func TestService_Build(t *testing.T) {
	service := NewService(loading.NewService(""), forecasting.NewModel(), nil)

	dashboard, err := service.Build(context.Background(), newInput(inventoryCSV, salesCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, dashboard.Inventory.Len())
	assert.Equal(t, 3, dashboard.Sales.Table.Len())
	assert.Equal(t, []domain.DailySalesPoint{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Count: 2},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Count: 1},
	}, dashboard.DailySales)
	assert.Len(t, dashboard.Forecast, 2+domain.ForecastHorizonDays)
	assert.False(t, dashboard.GeneratedAt.IsZero())
}

func TestService_Build_Errors(t *testing.T) {
	service := NewService(loading.NewService(""), forecasting.NewModel(), nil)

	tests := []struct {
		name        string
		input       domain.DashboardInput
		expectErr   error
		expectStage string
	}{
		{
			name:      "Sem arquivos aguarda envio",
			input:     domain.DashboardInput{},
			expectErr: ErrInputMissing,
		},
		{
			name:      "Apenas estoque aguarda envio",
			input:     domain.DashboardInput{Inventory: strings.NewReader(inventoryCSV)},
			expectErr: ErrInputMissing,
		},
		{
			name:        "Estoque malformado interrompe a montagem",
			input:       newInput("Produto,Quantidade\nPomada\n", salesCSV),
			expectErr:   loading.ErrMalformedFile,
			expectStage: StageLoadInventory,
		},
		{
			name:        "Vendas sem coluna de data interrompe a montagem",
			input:       newInput(inventoryCSV, "Cliente\nJoão\n"),
			expectErr:   loading.ErrMissingColumn,
			expectStage: StageLoadSales,
		},
		{
			name:        "Apenas um dia de vendas não permite previsão",
			input:       newInput(inventoryCSV, "Data e Hora\n2024-01-01 09:00:00\n2024-01-01 10:00:00\n"),
			expectErr:   forecasting.ErrInsufficientHistory,
			expectStage: StageForecast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dashboard, err := service.Build(context.Background(), tt.input)

			assert.Nil(t, dashboard)
			assert.ErrorIs(t, err, tt.expectErr)

			if tt.expectStage != "" {
				var dashErr *DashboardError
				require.ErrorAs(t, err, &dashErr)
				assert.Equal(t, tt.expectStage, dashErr.Stage)
			}
		})
	}
}

func TestService_Build_RecordsRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRunRepo := mocks.NewMockAnalysisRunRepository(ctrl)
	service := NewService(loading.NewService(""), forecasting.NewModel(), mockRunRepo)

	t.Run("Execução concluída grava resumo", func(t *testing.T) {
		mockRunRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, run *domain.AnalysisRun) error {
				assert.NotEmpty(t, run.ID)
				assert.Equal(t, domain.AnalysisRunStatusSuccess, run.Status)
				assert.Equal(t, "estoque.csv", run.InventoryFile)
				assert.Equal(t, 2, run.InventoryRows)
				assert.Equal(t, 3, run.SalesRows)
				assert.Equal(t, 2, run.DistinctDays)
				require.NotNil(t, run.LastSalesDate)
				assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *run.LastSalesDate)
				return nil
			})

		_, err := service.Build(context.Background(), newInput(inventoryCSV, salesCSV))
		assert.NoError(t, err)
	})

	t.Run("Falha na montagem grava o erro", func(t *testing.T) {
		mockRunRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, run *domain.AnalysisRun) error {
				assert.Equal(t, domain.AnalysisRunStatusFailed, run.Status)
				assert.Contains(t, run.Error, "coluna obrigatória ausente")
				assert.Zero(t, run.SalesRows)
				assert.Nil(t, run.FirstSalesDate)
				return nil
			})

		_, err := service.Build(context.Background(), newInput(inventoryCSV, "Cliente\nJoão\n"))
		assert.Error(t, err)
	})

	t.Run("Erro ao gravar histórico não afeta o dashboard", func(t *testing.T) {
		mockRunRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Return(errors.New("banco indisponível"))

		dashboard, err := service.Build(context.Background(), newInput(inventoryCSV, salesCSV))
		require.NoError(t, err)
		assert.NotNil(t, dashboard)
	})

	t.Run("Arquivos ausentes não gravam histórico", func(t *testing.T) {
		_, err := service.Build(context.Background(), domain.DashboardInput{})
		assert.ErrorIs(t, err, ErrInputMissing)
	})
}
