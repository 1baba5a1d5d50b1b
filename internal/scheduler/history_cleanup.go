// Package scheduler contém os serviços agendados da aplicação
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
)

const cleanupTimeout = 2 * time.Minute

type HistoryCleanupConfig struct {
	CronSchedule  string
	RetentionDays int
	Enabled       bool
}

// HistoryCleanupService remove do histórico as execuções mais antigas que a retenção
type HistoryCleanupService struct {
	scheduler           *gocron.Scheduler
	runRepo             repository.AnalysisRunRepository
	config              HistoryCleanupConfig
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastDeleted         int64
}

func NewHistoryCleanupService(
	runRepo repository.AnalysisRunRepository,
	cfg *config.Config,
) *HistoryCleanupService {
	cleanupConfig := HistoryCleanupConfig{
		CronSchedule:  cfg.History.CleanupCron,
		RetentionDays: cfg.History.RetentionDays,
		Enabled:       cfg.History.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":  cleanupConfig.CronSchedule,
		"retention_days": cleanupConfig.RetentionDays,
	}).Info("Configuração da limpeza do histórico carregada")

	return &HistoryCleanupService{
		scheduler: gocron.NewScheduler(time.Local),
		runRepo:   runRepo,
		config:    cleanupConfig,
	}
}

func (s *HistoryCleanupService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Limpeza do histórico desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando cron de limpeza do histórico de execuções")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if err := s.Cleanup(ctx); err != nil {
			logrus.WithError(err).Error("Erro na limpeza do histórico de execuções")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar limpeza do histórico: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando cron de limpeza do histórico")
		s.scheduler.Stop()
	}()

	return nil
}

// Cleanup apaga as execuções mais antigas que a retenção configurada
func (s *HistoryCleanupService) Cleanup(ctx context.Context) error {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Warn("Limpeza do histórico já está em execução")
		return nil
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.lastSyncCompletedAt = time.Now()
		s.syncMutex.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()

	deleted, err := s.runRepo.DeleteOlderThan(ctx, s.config.RetentionDays)
	if err != nil {
		return fmt.Errorf("erro ao apagar execuções antigas: %w", err)
	}

	s.syncMutex.Lock()
	s.lastDeleted = deleted
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"deleted":        deleted,
		"retention_days": s.config.RetentionDays,
	}).Info("Limpeza do histórico de execuções concluída")

	return nil
}

// TriggerManualSync inicia manualmente uma limpeza em segundo plano
func (s *HistoryCleanupService) TriggerManualSync() bool {
	s.syncMutex.Lock()
	running := s.syncRunning
	s.syncMutex.Unlock()

	if running {
		logrus.Info("Limpeza do histórico já em andamento, ignorando solicitação manual")
		return false
	}

	logrus.Info("Iniciando limpeza manual do histórico de execuções")
	go func() {
		if err := s.Cleanup(context.Background()); err != nil {
			logrus.WithError(err).Error("Erro na limpeza manual do histórico")
		}
	}()
	return true
}

// Enabled indica se o histórico está ligado
func (s *HistoryCleanupService) Enabled() bool {
	return s.config.Enabled
}

// GetStatus retorna o status atual do agendador
func (s *HistoryCleanupService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"enabled":                s.config.Enabled,
		"cron":                   s.config.CronSchedule,
		"retention_days":         s.config.RetentionDays,
		"running":                s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_deleted":           s.lastDeleted,
	}
}
