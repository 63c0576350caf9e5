package domain

import (
	"time"
)

// Métodos de previsão registrados na coluna forecast_method
const (
	ForecastMethodNoData            = "no_data"
	ForecastMethodLinearTrendWithMA = "linear_trend_with_ma"
	ForecastMethodMeanBased         = "mean_based"
)

// MarForecast representa a única linha de previsão materializada por
// execução do pipeline: a estimativa de MAR do próximo mês com intervalo
// de confiança de 95% e campos de proveniência
type MarForecast struct {
	ConnectionName       string     `json:"connection_name"`
	DestinationID        string     `json:"destination_id"`
	ForecastMonth        *time.Time `json:"forecast_month"`
	ForecastedTotalMar   int64      `json:"forecasted_total_mar"`
	ForecastLowerBound   int64      `json:"forecast_lower_bound"`
	ForecastUpperBound   int64      `json:"forecast_upper_bound"`
	ForecastMethod       string     `json:"forecast_method"`
	HistoricalMonthsUsed int        `json:"historical_months_used"`
	LastHistoricalMonth  *time.Time `json:"last_historical_month"`
	ForecastCreatedAt    time.Time  `json:"forecast_created_at"`
}
