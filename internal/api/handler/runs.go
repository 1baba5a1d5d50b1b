package handler

import (
	"net/http"
	"strconv"

	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
)

// HistoryCleaner é a limpeza agendada do histórico, que também pode ser disparada manualmente
type HistoryCleaner interface {
	Enabled() bool
	TriggerManualSync() bool
	GetStatus() map[string]any
}

type runsResponse struct {
	Enabled bool                  `json:"enabled"`
	Runs    []*domain.AnalysisRun `json:"runs"`
}

// ListRuns lista o histórico de execuções. Com o histórico desligado a lista vem vazia.
func ListRuns(runRepo repository.AnalysisRunRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runRepo == nil {
			writeJSON(w, r, http.StatusOK, runsResponse{Enabled: false, Runs: []*domain.AnalysisRun{}})
			return
		}

		query := r.URL.Query()
		filters := domain.AnalysisRunFilters{}

		startDate, err := utils.ParseDate(query.Get("start_date"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "start_date deve estar no formato YYYY-MM-DD", nil)
			return
		}
		filters.StartDate = startDate

		if limit := query.Get("limit"); limit != "" {
			parsed, err := strconv.ParseUint(limit, 10, 64)
			if err != nil || parsed == 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "limit deve ser um inteiro positivo", nil)
				return
			}
			filters.Limit = parsed
		}

		runs, err := runRepo.List(r.Context(), filters)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao listar histórico de execuções")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar histórico de execuções", nil)
			return
		}

		writeJSON(w, r, http.StatusOK, runsResponse{Enabled: true, Runs: runs})
	}
}

// RunHistoryCleanup dispara manualmente a limpeza do histórico
func RunHistoryCleanup(cleaner HistoryCleaner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cleaner == nil || !cleaner.Enabled() {
			apiErrors.WriteError(w, apiErrors.ErrServiceDisabled, "Histórico de execuções desabilitado", nil)
			return
		}

		if !cleaner.TriggerManualSync() {
			writeJSON(w, r, http.StatusConflict, map[string]any{"message": "Limpeza do histórico já está em andamento"})
			return
		}

		writeJSON(w, r, http.StatusAccepted, map[string]any{"message": "Limpeza do histórico iniciada com sucesso"})
	}
}

// GetHistoryCleanupStatus retorna o status do agendador de limpeza
func GetHistoryCleanupStatus(cleaner HistoryCleaner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cleaner == nil {
			writeJSON(w, r, http.StatusOK, map[string]any{"enabled": false})
			return
		}
		writeJSON(w, r, http.StatusOK, cleaner.GetStatus())
	}
}
