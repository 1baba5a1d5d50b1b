package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/forecasting"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/loading"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"go.uber.org/mock/gomock"
)

const (
	testMaxUpload = 1 << 20

	inventoryCSV = "Produto,Quantidade\nPomada,10\nÓleo,3\n"
	salesCSV     = "Data e Hora,Cliente\n2024-01-01 09:00:00,João\n2024-01-01 14:00:00,Maria\n2024-01-02 10:00:00,Pedro\n"
)

func newTestService() dashboarding.Dashboarder {
	return dashboarding.NewService(loading.NewService(""), forecasting.NewModel(), nil)
}

func newUploadRequest(t *testing.T, target string, files map[string]string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestBuildDashboard(t *testing.T) {
	handler := BuildDashboard(newTestService(), testMaxUpload)

	t.Run("Deve devolver tabelas, série diária e previsão", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newUploadRequest(t, "/v1/dashboard", map[string]string{
			InventoryField: inventoryCSV,
			SalesField:     salesCSV,
		}))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp dashboardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, statusCompleted, resp.Status)
		assert.Equal(t, []string{"Produto", "Quantidade"}, resp.Inventory.Columns)
		assert.Len(t, resp.Sales.Rows, 3)
		assert.Equal(t, []dailySalesResponse{{Date: "2024-01-01", Count: 2}, {Date: "2024-01-02", Count: 1}}, resp.DailySales)

		require.Len(t, resp.Forecast, 32)
		assert.True(t, resp.Forecast[0].Historical)
		last := resp.Forecast[len(resp.Forecast)-1]
		assert.Equal(t, "2024-02-01", last.Date)
		assert.False(t, last.Historical)
		assert.InDelta(t, -29.0, last.Value, 1e-9)
	})

	t.Run("Sem arquivos retorna estado de espera", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newUploadRequest(t, "/v1/dashboard", map[string]string{InventoryField: inventoryCSV}))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp awaitingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, statusAwaitingFiles, resp.Status)
		assert.Equal(t, awaitingFilesMessage, resp.Message)
	})

	t.Run("Requisição sem multipart também aguarda arquivos", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/dashboard", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), statusAwaitingFiles)
	})

	errorTests := []struct {
		name       string
		files      map[string]string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "Data inválida retorna erro de planilha",
			files:      map[string]string{InventoryField: inventoryCSV, SalesField: "Data e Hora\n2024-01-01 09:00:00\nontem\n"},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiErrors.ErrInvalidSpreadsheet,
		},
		{
			name:       "Estoque vazio retorna erro de planilha",
			files:      map[string]string{InventoryField: "", SalesField: salesCSV},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiErrors.ErrInvalidSpreadsheet,
		},
		{
			name:       "Um único dia de vendas retorna erro de previsão",
			files:      map[string]string{InventoryField: inventoryCSV, SalesField: "Data e Hora\n2024-01-01 09:00:00\n"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apiErrors.ErrForecastFailed,
		},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newUploadRequest(t, "/v1/dashboard", tt.files))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var apiErr apiErrors.APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}

	t.Run("Arquivo acima do limite retorna 413", func(t *testing.T) {
		small := BuildDashboard(newTestService(), 64)
		rec := httptest.NewRecorder()
		small.ServeHTTP(rec, newUploadRequest(t, "/v1/dashboard", map[string]string{
			InventoryField: inventoryCSV,
			SalesField:     salesCSV,
		}))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), apiErrors.ErrPayloadTooLarge)
	})
}

func TestDashboardPage(t *testing.T) {
	handler := DashboardPage(newTestService(), testMaxUpload)

	t.Run("GET mostra o formulário e o aviso de espera", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Barba de Elite - Dashboard de Vendas e Previsões")
		assert.Contains(t, body, "Por favor, envie os dois arquivos .csv para visualizar a análise.")
		assert.NotContains(t, body, "Tendência de Vendas Diárias")
	})

	t.Run("POST com os dois arquivos mostra tabelas e gráficos", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newUploadRequest(t, "/", map[string]string{
			InventoryField: inventoryCSV,
			SalesField:     salesCSV,
		}))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Análise concluída com sucesso!")
		assert.Contains(t, body, "Visualizar dados de estoque")
		assert.Contains(t, body, "Visualizar dados de vendas")
		assert.Contains(t, body, "<td>Pomada</td>")
		assert.Contains(t, body, "Tendência de Vendas Diárias")
		assert.Contains(t, body, "Previsão de Vendas para os Próximos 30 Dias")
		assert.Contains(t, body, "srcdoc=")
	})

	t.Run("POST com apenas um arquivo mantém a espera", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newUploadRequest(t, "/", map[string]string{SalesField: salesCSV}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Por favor, envie os dois arquivos .csv")
	})

	t.Run("POST com planilha inválida mostra o erro", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newUploadRequest(t, "/", map[string]string{
			InventoryField: inventoryCSV,
			SalesField:     "Cliente\nJoão\n",
		}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "coluna obrigatória ausente")
		assert.NotContains(t, rec.Body.String(), "Análise concluída com sucesso!")
	})
}

func TestListRuns(t *testing.T) {
	t.Run("Histórico desligado retorna lista vazia", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ListRuns(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"enabled":false,"runs":[]}`, rec.Body.String())
	})

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRunRepo := mocks.NewMockAnalysisRunRepository(ctrl)

	tests := []struct {
		name       string
		target     string
		setup      func()
		wantStatus int
		validate   func(t *testing.T, body []byte)
	}{
		{
			name:   "Deve repassar filtros ao repositório",
			target: "/v1/runs?start_date=2024-01-01&limit=10",
			setup: func() {
				start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
				mockRunRepo.EXPECT().
					List(gomock.Any(), domain.AnalysisRunFilters{StartDate: &start, Limit: 10}).
					Return([]*domain.AnalysisRun{{ID: "abc123", Status: domain.AnalysisRunStatusSuccess}}, nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, body []byte) {
				var resp runsResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.True(t, resp.Enabled)
				require.Len(t, resp.Runs, 1)
				assert.Equal(t, "abc123", resp.Runs[0].ID)
			},
		},
		{
			name:       "Data inicial inválida",
			target:     "/v1/runs?start_date=01/01/2024",
			setup:      func() {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Limite inválido",
			target:     "/v1/runs?limit=-3",
			setup:      func() {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "Erro do repositório",
			target: "/v1/runs",
			setup: func() {
				mockRunRepo.EXPECT().
					List(gomock.Any(), domain.AnalysisRunFilters{}).
					Return(nil, errors.New("banco indisponível"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			rec := httptest.NewRecorder()
			ListRuns(mockRunRepo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.validate != nil {
				tt.validate(t, rec.Body.Bytes())
			}
		})
	}
}

type fakeCleaner struct {
	enabled bool
	accept  bool
	calls   int
}

func (f *fakeCleaner) Enabled() bool { return f.enabled }

func (f *fakeCleaner) TriggerManualSync() bool {
	f.calls++
	return f.accept
}

func (f *fakeCleaner) GetStatus() map[string]any {
	return map[string]any{"enabled": f.enabled, "retention_days": 90}
}

func TestRunHistoryCleanup(t *testing.T) {
	tests := []struct {
		name       string
		cleaner    *fakeCleaner
		wantStatus int
		wantCalls  int
	}{
		{name: "Histórico desligado", cleaner: &fakeCleaner{enabled: false}, wantStatus: http.StatusServiceUnavailable},
		{name: "Limpeza iniciada", cleaner: &fakeCleaner{enabled: true, accept: true}, wantStatus: http.StatusAccepted, wantCalls: 1},
		{name: "Limpeza já em andamento", cleaner: &fakeCleaner{enabled: true, accept: false}, wantStatus: http.StatusConflict, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RunHistoryCleanup(tt.cleaner).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/runs/cleanup", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalls, tt.cleaner.calls)
		})
	}

	t.Run("Status do agendador", func(t *testing.T) {
		rec := httptest.NewRecorder()
		GetHistoryCleanupStatus(&fakeCleaner{enabled: true}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs/cleanup/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"enabled":true,"retention_days":90}`, rec.Body.String())
	})
}

func TestClassifyDashboardError(t *testing.T) {
	code, _, _ := classifyDashboardError(context.Canceled)
	assert.Equal(t, apiErrors.ErrInternalServer, code)
}
