package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/rendering"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

const pageTitle = "Barba de Elite - Dashboard de Vendas e Previsões"

//go:embed templates/dashboard.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/dashboard.html"))

type pageTables struct {
	Inventory *domain.Table
	Sales     *domain.Table
}

type pageData struct {
	Title         string
	Message       string
	Error         string
	Dashboard     *pageTables
	TrendChart    string
	ForecastChart string
}

// DashboardPage renderiza a página do dashboard. Sem os dois arquivos a página fica em espera.
func DashboardPage(service dashboarding.Dashboarder, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{Title: pageTitle, Message: awaitingFilesMessage}

		if r.Method != http.MethodPost {
			renderPage(w, r, http.StatusOK, data)
			return
		}

		input, cleanup, err := readDashboardInput(w, r, maxUploadBytes)
		defer cleanup()
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				data.Error = "Os arquivos enviados são maiores que o limite permitido."
				renderPage(w, r, http.StatusRequestEntityTooLarge, data)
				return
			}
			data.Error = "Não foi possível ler os arquivos enviados."
			renderPage(w, r, http.StatusBadRequest, data)
			return
		}

		dashboard, err := service.Build(r.Context(), input)
		if err != nil {
			if errors.Is(err, dashboarding.ErrInputMissing) {
				renderPage(w, r, http.StatusOK, data)
				return
			}
			code, message, _ := classifyDashboardError(err)
			data.Error = message
			renderPage(w, r, apiErrors.StatusFor(code), data)
			return
		}

		trend, err := rendering.RenderHTML(rendering.TrendChart(dashboard.DailySales))
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("dashboard: erro ao renderizar gráfico de tendência")
			data.Error = "Erro ao renderizar os gráficos."
			renderPage(w, r, http.StatusInternalServerError, data)
			return
		}

		forecast, err := rendering.RenderHTML(rendering.ForecastChart(dashboard.DailySales, dashboard.Forecast))
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("dashboard: erro ao renderizar gráfico de previsão")
			data.Error = "Erro ao renderizar os gráficos."
			renderPage(w, r, http.StatusInternalServerError, data)
			return
		}

		data.Message = successMessage
		data.Dashboard = &pageTables{Inventory: dashboard.Inventory, Sales: &dashboard.Sales.Table}
		data.TrendChart = trend
		data.ForecastChart = forecast

		renderPage(w, r, http.StatusOK, data)
	}
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		log.ForContext(r.Context()).WithError(err).Error("dashboard: erro ao executar template da página")
		http.Error(w, "Erro interno no servidor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
