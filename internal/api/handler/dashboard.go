package handler

import (
	"mime/multipart"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/loading"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Campos do formulário multipart
const (
	InventoryField = "inventory"
	SalesField     = "sales"
)

const (
	statusCompleted     = "completed"
	statusAwaitingFiles = "awaiting_files"

	awaitingFilesMessage = "Por favor, envie os dois arquivos .csv para visualizar a análise."
	successMessage       = "Análise concluída com sucesso!"
)

type dailySalesResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type forecastPointResponse struct {
	Date       string  `json:"date"`
	Value      float64 `json:"value"`
	Historical bool    `json:"historical"`
}

type dashboardResponse struct {
	Status      string                  `json:"status"`
	Message     string                  `json:"message"`
	Inventory   *domain.Table           `json:"inventory"`
	Sales       *domain.Table           `json:"sales"`
	DailySales  []dailySalesResponse    `json:"daily_sales"`
	Forecast    []forecastPointResponse `json:"forecast"`
	GeneratedAt time.Time               `json:"generated_at"`
}

type awaitingResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func newDashboardResponse(d *domain.Dashboard) dashboardResponse {
	daily := make([]dailySalesResponse, 0, len(d.DailySales))
	for _, point := range d.DailySales {
		daily = append(daily, dailySalesResponse{Date: utils.FormatDate(point.Date), Count: point.Count})
	}

	forecast := make([]forecastPointResponse, 0, len(d.Forecast))
	for _, point := range d.Forecast {
		forecast = append(forecast, forecastPointResponse{
			Date:       utils.FormatDate(point.Date),
			Value:      utils.RoundWithTwoDecimalPlace(point.Value),
			Historical: point.Historical,
		})
	}

	return dashboardResponse{
		Status:      statusCompleted,
		Message:     successMessage,
		Inventory:   d.Inventory,
		Sales:       &d.Sales.Table,
		DailySales:  daily,
		Forecast:    forecast,
		GeneratedAt: d.GeneratedAt,
	}
}

// BuildDashboard recebe os dois CSVs e devolve tabelas, série diária e previsão em JSON
func BuildDashboard(service dashboarding.Dashboarder, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, cleanup, err := readDashboardInput(w, r, maxUploadBytes)
		defer cleanup()
		if err != nil {
			writeUploadError(w, r, err)
			return
		}

		dashboard, err := service.Build(r.Context(), input)
		if err != nil {
			if errors.Is(err, dashboarding.ErrInputMissing) {
				writeJSON(w, r, http.StatusOK, awaitingResponse{Status: statusAwaitingFiles, Message: awaitingFilesMessage})
				return
			}
			code, message, details := classifyDashboardError(err)
			apiErrors.WriteError(w, code, message, details)
			return
		}

		writeJSON(w, r, http.StatusOK, newDashboardResponse(dashboard))
	}
}

// readDashboardInput lê os arquivos do formulário. Arquivos ausentes ficam nil no input.
func readDashboardInput(w http.ResponseWriter, r *http.Request, maxUploadBytes int64) (domain.DashboardInput, func(), error) {
	input := domain.DashboardInput{}
	files := make([]multipart.File, 0, 2)

	cleanup := func() {
		for _, f := range files {
			_ = f.Close()
		}
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	if r.ContentLength > maxUploadBytes {
		return input, cleanup, &http.MaxBytesError{Limit: maxUploadBytes}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return input, cleanup, nil
		}
		return input, cleanup, err
	}

	open := func(field string) (multipart.File, string, error) {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		if err != nil {
			return nil, "", err
		}
		files = append(files, file)
		return file, header.Filename, nil
	}

	inventory, inventoryName, err := open(InventoryField)
	if err != nil {
		return input, cleanup, err
	}
	if inventory != nil {
		input.Inventory, input.InventoryName = inventory, inventoryName
	}

	sales, salesName, err := open(SalesField)
	if err != nil {
		return input, cleanup, err
	}
	if sales != nil {
		input.Sales, input.SalesName = sales, salesName
	}

	return input, cleanup, nil
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		apiErrors.WriteError(w, apiErrors.ErrPayloadTooLarge, "Arquivos maiores que o limite permitido", map[string]any{"limit_bytes": maxBytesErr.Limit})
		return
	}

	log.ForContext(r.Context()).WithError(err).Warn("dashboard: erro ao ler formulário multipart")
	apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Não foi possível ler os arquivos enviados", nil)
}

// classifyDashboardError traduz um erro do pipeline para código, mensagem e detalhes da API
func classifyDashboardError(err error) (string, string, any) {
	var parseErr *loading.ParseError
	if errors.As(err, &parseErr) {
		details := map[string]any{"file": parseErr.Source}
		if parseErr.Line > 0 {
			details["line"] = parseErr.Line
		}
		if parseErr.Column != "" {
			details["column"] = parseErr.Column
		}
		return apiErrors.ErrInvalidSpreadsheet, parseErr.Error(), details
	}

	var dashErr *dashboarding.DashboardError
	if errors.As(err, &dashErr) && dashErr.Stage == dashboarding.StageForecast {
		return apiErrors.ErrForecastFailed, "Não foi possível gerar a previsão: " + dashErr.Err.Error(), nil
	}

	return apiErrors.ErrInternalServer, "Erro ao montar o dashboard", nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.ForContext(r.Context()).WithError(err).Error("Erro ao enviar resposta")
	}
}
