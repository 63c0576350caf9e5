package forecasting

import (
	"github.com/vfg2006/mar-forecast-api/internal/domain"
)

// Forecaster define a interface do componente de previsão de MAR
type Forecaster interface {
	// Forecast calcula a previsão de MAR do próximo mês a partir das linhas
	// brutas da tabela histórica. Sempre retorna uma linha de resultado,
	// mesmo sem histórico para a chave alvo
	Forecast(history []*domain.MarHistoryEntry) *domain.MarForecast

	// LatestForecast retorna a última previsão materializada, ou nil quando
	// o pipeline ainda não executou
	LatestForecast() (*domain.MarForecast, error)

	// AvailableMonths retorna os meses históricos disponíveis para a chave alvo
	AvailableMonths() (*domain.AvailableMonths, error)

	// HistorySeries retorna a série mensal agregada da chave alvo, com a
	// variação percentual mês a mês
	HistorySeries() (*domain.MarHistorySummary, error)
}
