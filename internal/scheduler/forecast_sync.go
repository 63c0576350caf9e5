package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/mar-forecast-api/infrastructure/repository"
	"github.com/vfg2006/mar-forecast-api/internal/config"
	"github.com/vfg2006/mar-forecast-api/internal/usecases/forecasting"
	"github.com/vfg2006/mar-forecast-api/pkg/utils"
)

// ForecastSyncConfig representa a configuração do agendador de previsão de MAR
type ForecastSyncConfig struct {
	CronSchedule string
	SyncEnabled  bool
	RunOnStartup bool
}

// ForecastSyncService gerencia o agendamento e execução do pipeline mensal de
// previsão de MAR: ler o histórico, calcular a previsão e materializar a
// tabela de saída
type ForecastSyncService struct {
	scheduler           *gocron.Scheduler
	config              ForecastSyncConfig
	appConfig           *config.Config
	historyRepo         repository.MarHistoryRepository
	forecastRepo        repository.MarForecastRepository
	forecaster          forecasting.Forecaster
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastRunID           string
	lastRunError        string
}

// NewForecastSyncService cria uma nova instância do serviço de sincronização da previsão
func NewForecastSyncService(
	historyRepo repository.MarHistoryRepository,
	forecastRepo repository.MarForecastRepository,
	forecaster forecasting.Forecaster,
	appConfig *config.Config,
) *ForecastSyncService {
	// Criar a configuração com base na config global
	syncConfig := ForecastSyncConfig{
		CronSchedule: appConfig.ForecastSync.CronSchedule,
		SyncEnabled:  appConfig.ForecastSync.Enabled,
		RunOnStartup: appConfig.ForecastSync.RunOnStartup,
	}

	// Criar o agendador
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":  syncConfig.CronSchedule,
		"sync_enabled":   syncConfig.SyncEnabled,
		"run_on_startup": syncConfig.RunOnStartup,
	}).Info("Configuração do agendador de previsão de MAR carregada")

	return &ForecastSyncService{
		scheduler:    scheduler,
		config:       syncConfig,
		appConfig:    appConfig,
		historyRepo:  historyRepo,
		forecastRepo: forecastRepo,
		forecaster:   forecaster,
		syncRunning:  false,
	}
}

// Start inicia o agendador
func (s *ForecastSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização da previsão de MAR desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador da previsão de MAR")

	// Agendar a execução mensal do pipeline
	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncForecast(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar a previsão de MAR: %w", err)
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador da previsão de MAR")
		s.scheduler.Stop()
	}()

	// Recuperar execuções perdidas: se o serviço ficou fora do ar na data
	// agendada, a previsão persistida fica de um mês anterior
	if s.config.RunOnStartup && s.needsRefresh() {
		logrus.Info("Previsão de MAR ausente ou desatualizada, executando sincronização de arranque")
		go s.syncForecast(ctx)
	}

	return nil
}

// needsRefresh verifica se a previsão persistida foi gerada dentro do mês corrente
func (s *ForecastSyncService) needsRefresh() bool {
	latest, err := s.forecastRepo.GetLatest()
	if err != nil {
		logrus.WithError(err).Warn("Erro ao consultar a previsão persistida, assumindo atualização necessária")
		return true
	}

	if latest == nil {
		return true
	}

	currentMonth := utils.TruncateToMonth(time.Now().UTC())

	return latest.ForecastCreatedAt.Before(currentMonth)
}

// syncForecast executa o pipeline completo: histórico -> previsão -> materialização
func (s *ForecastSyncService) syncForecast(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Previsão de MAR já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	runID, err := utils.GenerateID()
	if err != nil {
		runID = "unknown"
	}

	startTime := time.Now()

	s.syncMutex.Lock()
	s.lastSyncStartedAt = startTime
	s.lastRunID = runID
	s.lastRunError = ""
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logger := logrus.WithField("run_id", runID)
	logger.WithFields(logrus.Fields{
		"connection_name": s.appConfig.Forecast.ConnectionName,
		"destination_id":  s.appConfig.Forecast.DestinationID,
	}).Info("Iniciando execução da previsão de MAR")

	history, err := s.historyRepo.ListAll()
	if err != nil {
		s.failRun(logger, err, "Erro ao ler a tabela de histórico de MAR")
		return
	}

	forecast := s.forecaster.Forecast(history)

	logger.WithFields(logrus.Fields{
		"forecast_method":      forecast.ForecastMethod,
		"forecast_total_mar":   forecast.ForecastedTotalMar,
		"forecast_months_used": forecast.HistoricalMonthsUsed,
		"forecast_lower_bound": forecast.ForecastLowerBound,
		"forecast_upper_bound": forecast.ForecastUpperBound,
	}).Info("Previsão de MAR calculada")

	logger.Debug(utils.PrettyJson(forecast))

	if err := s.forecastRepo.Replace(ctx, forecast); err != nil {
		s.failRun(logger, err, "Erro ao materializar a tabela de previsão de MAR")
		return
	}

	duration := time.Since(startTime)
	logger.WithFields(logrus.Fields{
		"duration":    duration.String(),
		"months_used": forecast.HistoricalMonthsUsed,
	}).Info("Previsão de MAR concluída")

	s.syncMutex.Lock()
	s.lastSyncCompletedAt = time.Now()
	s.syncMutex.Unlock()
}

// failRun registra a falha da execução e guarda o motivo para o status
func (s *ForecastSyncService) failRun(logger *logrus.Entry, err error, message string) {
	if errors.Is(err, repository.ErrInsufficientSchema) {
		logger.WithError(err).Error("Tabela de histórico sem as colunas obrigatórias, abortando execução")
	} else {
		logger.WithError(err).Error(message)
	}

	s.syncMutex.Lock()
	s.lastRunError = err.Error()
	s.syncMutex.Unlock()
}

// IsRunning informa se uma execução da previsão está em andamento
func (s *ForecastSyncService) IsRunning() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return s.syncRunning
}

// TriggerManualSync inicia manualmente uma execução da previsão de MAR
func (s *ForecastSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Previsão de MAR já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando execução manual da previsão de MAR")
	go s.syncForecast(context.Background())
}

// GetStatus retorna o status atual da sincronização
func (s *ForecastSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"last_run_id":            s.lastRunID,
		"last_run_error":         s.lastRunError,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
