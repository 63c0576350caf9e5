package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/mar-forecast-api/internal/domain"
	"github.com/vfg2006/mar-forecast-api/internal/scheduler"
	"github.com/vfg2006/mar-forecast-api/pkg/apiErrors"
	"github.com/vfg2006/mar-forecast-api/pkg/middleware"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypeForecast = "forecast"
	CronJobTypeAll      = "all"
)

// CronJobServices contém os serviços de cron necessários para executar manualmente
type CronJobServices struct {
	ForecastSyncService *scheduler.ForecastSyncService
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		// Verificar permissões - apenas administradores podem executar cron jobs
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != 1 {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem executar cron jobs", nil)
			return
		}

		// Obter o tipo de cron job da URL
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		// Validar o tipo de cron job
		switch cronType {
		case CronJobTypeForecast:
			// Executar o pipeline de previsão de MAR
			if services.ForecastSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de previsão de MAR não disponível", nil)
				return
			}
			if services.ForecastSyncService.IsRunning() {
				apiErrors.WriteError(w, apiErrors.ErrForecastRunning, "Sincronização de previsão já em andamento", nil)
				return
			}
			services.ForecastSyncService.TriggerManualSync()

		case CronJobTypeAll:
			// Executar todas as sincronizações disponíveis
			if services.ForecastSyncService != nil {
				services.ForecastSyncService.TriggerManualSync()
			}
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: forecast, all", nil)
			return
		}

		// Responder com sucesso
		response := map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		}
		json.NewEncoder(w).Encode(response)
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		// Verificar permissões - apenas administradores podem ver status das crons
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != 1 {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem verificar status de cron jobs", nil)
			return
		}

		status := map[string]any{
			"forecast": services.ForecastSyncService.GetStatus(),
		}

		json.NewEncoder(w).Encode(status)
	}
}
