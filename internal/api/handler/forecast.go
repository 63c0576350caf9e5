package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/mar-forecast-api/internal/usecases/forecasting"
	"github.com/vfg2006/mar-forecast-api/pkg/apiErrors"
)

// GetLatestForecast retorna a previsão de MAR mais recente materializada pelo pipeline
func GetLatestForecast(service forecasting.Forecaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forecast, err := service.LatestForecast()
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar previsão", nil)
			return
		}

		if forecast == nil {
			apiErrors.WriteError(w, apiErrors.ErrForecastNotFound, "Nenhuma previsão materializada até o momento", nil)
			return
		}

		// Enviar resposta
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(forecast)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}

// GetAvailableMonths retorna os meses de histórico disponíveis para a chave configurada
func GetAvailableMonths(service forecasting.Forecaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		months, err := service.AvailableMonths()
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar meses disponíveis", nil)
			return
		}

		// Enviar resposta
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(months)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}

// GetForecastHistory retorna a série mensal agregada de MAR com a variação
// percentual mês a mês
func GetForecastHistory(service forecasting.Forecaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetForecastHistory")

		summary, err := service.HistorySeries()
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar histórico de MAR", nil)
			return
		}

		// Enviar resposta
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(summary)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}
