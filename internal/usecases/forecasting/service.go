package forecasting

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vfg2006/mar-forecast-api/infrastructure/repository"
	"github.com/vfg2006/mar-forecast-api/internal/config"
	"github.com/vfg2006/mar-forecast-api/internal/domain"
	"github.com/vfg2006/mar-forecast-api/pkg/utils"
)

const (
	// trendWindowMonths limita a regressão aos últimos meses da série
	trendWindowMonths = 6

	// minMonthsForTrend é o histórico mínimo para o ramo de tendência
	minMonthsForTrend = 3

	// movingAverageMonths é o tamanho da média móvel curta combinada à tendência
	movingAverageMonths = 3

	// trendWeight e movingAverageWeight combinam a projeção da regressão com a
	// média móvel curta; devem somar 1.0
	trendWeight         = 0.7
	movingAverageWeight = 0.3

	// zScore95 é o quantil normal usado no intervalo de confiança de 95%
	zScore95 = 1.96

	// singlePointSpreadRatio é a dispersão heurística aplicada quando existe
	// um único mês de histórico e o desvio padrão amostral é indefinido
	singlePointSpreadRatio = 0.1
)

// forecastOutcome é o resultado intermediário de um dos ramos da política de
// previsão, resolvido pela montagem única da linha de saída
type forecastOutcome struct {
	point      float64
	lower      float64
	upper      float64
	method     string
	monthsUsed int
	lastMonth  *time.Time
	nextMonth  *time.Time
}

// Service implementa a interface Forecaster
type Service struct {
	cfg          *config.Config
	historyRepo  repository.MarHistoryRepository
	forecastRepo repository.MarForecastRepository
}

// NewService cria uma nova instância do serviço de previsão de MAR
func NewService(
	cfg *config.Config,
	historyRepo repository.MarHistoryRepository,
	forecastRepo repository.MarForecastRepository,
) Forecaster {
	return &Service{
		cfg:          cfg,
		historyRepo:  historyRepo,
		forecastRepo: forecastRepo,
	}
}

// Forecast calcula a previsão de MAR do próximo mês para a chave alvo
// configurada. O cálculo é puro e síncrono: filtra as linhas da chave,
// agrega por mês, escolhe o ramo de previsão pela profundidade do histórico
// e monta a única linha de saída
func (s *Service) Forecast(history []*domain.MarHistoryEntry) *domain.MarForecast {
	return s.forecastAt(history, time.Now().UTC())
}

// forecastAt é a variante interna com o instante de criação injetado,
// capturado uma única vez por invocação
func (s *Service) forecastAt(history []*domain.MarHistoryEntry, createdAt time.Time) *domain.MarForecast {
	filtered := s.filterByTarget(history)
	if len(filtered) == 0 {
		return s.newForecast(noDataOutcome(), createdAt)
	}

	series := aggregateMonthly(filtered)
	if len(series) == 0 {
		return s.newForecast(noDataOutcome(), createdAt)
	}

	return s.newForecast(s.computeOutcome(series), createdAt)
}

// filterByTarget seleciona as linhas históricas da chave conector/destino
// configurada; linhas de outras chaves nunca participam da agregação
func (s *Service) filterByTarget(history []*domain.MarHistoryEntry) []*domain.MarHistoryEntry {
	filtered := make([]*domain.MarHistoryEntry, 0, len(history))
	for _, entry := range history {
		if entry == nil {
			continue
		}

		if entry.ConnectionName != s.cfg.Forecast.ConnectionName ||
			entry.DestinationID != s.cfg.Forecast.DestinationID {
			continue
		}

		filtered = append(filtered, entry)
	}

	return filtered
}

// aggregateMonthly agrupa as linhas por mês (datas normalizadas para o
// primeiro dia do mês) somando o volume, e devolve a série em ordem
// cronológica com meses únicos
func aggregateMonthly(entries []*domain.MarHistoryEntry) []*domain.MonthlyMarTotal {
	totals := make(map[time.Time]int64, len(entries))
	for _, entry := range entries {
		month := utils.TruncateToMonth(entry.MeasuredMonth)
		totals[month] += entry.TotalMonthlyActiveRows
	}

	series := make([]*domain.MonthlyMarTotal, 0, len(totals))
	for month, total := range totals {
		series = append(series, &domain.MonthlyMarTotal{
			Month:    month,
			TotalMar: total,
		})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Month.Before(series[j].Month)
	})

	return series
}

// computeOutcome aplica a política de previsão de três ramos sobre a série
// mensal agregada
func (s *Service) computeOutcome(series []*domain.MonthlyMarTotal) forecastOutcome {
	n := len(series)
	if n == 0 {
		// Guarda estrutural: com a série vazia já tratada pelo chamador,
		// este ramo não é alcançado em condições normais
		return forecastOutcome{method: domain.ForecastMethodLinearTrendWithMA}
	}

	lastMonth := series[n-1].Month
	nextMonth := utils.NextMonth(lastMonth)

	outcome := forecastOutcome{
		monthsUsed: n,
		lastMonth:  &lastMonth,
		nextMonth:  &nextMonth,
	}

	if n >= minMonthsForTrend {
		point, stdDev := trendForecast(series)
		outcome.point = point
		outcome.lower = math.Max(0, point-zScore95*stdDev)
		outcome.upper = point + zScore95*stdDev
		outcome.method = domain.ForecastMethodLinearTrendWithMA
		return outcome
	}

	point, stdDev := meanForecast(series)
	outcome.point = point
	outcome.lower = math.Max(0, point-zScore95*stdDev)
	outcome.upper = point + zScore95*stdDev

	// O rótulo do método é compartilhado com o ramo de tendência para manter
	// compatibilidade com a tabela produzida pelo pipeline anterior; o rótulo
	// distinto fica atrás de configuração explícita
	outcome.method = domain.ForecastMethodLinearTrendWithMA
	if s.cfg.Forecast.DistinctMeanMethod {
		outcome.method = domain.ForecastMethodMeanBased
	}

	return outcome
}

// trendForecast projeta o próximo mês pela regressão linear da janela
// recente combinada com a média móvel curta, e devolve também o desvio
// padrão amostral da janela
func trendForecast(series []*domain.MonthlyMarTotal) (point, stdDev float64) {
	windowSize := len(series)
	if windowSize > trendWindowMonths {
		windowSize = trendWindowMonths
	}

	values := seriesValues(series[len(series)-windowSize:])

	slope, intercept := linearFit(values)
	trend := slope*float64(len(values)) + intercept

	movingAverage := meanOf(values[len(values)-movingAverageMonths:])

	point = trendWeight*trend + movingAverageWeight*movingAverage
	stdDev = sampleStdDev(values)
	return point, stdDev
}

// meanForecast usa a média simples de todo o histórico quando a série é
// curta demais para a regressão; com um único mês o desvio padrão amostral é
// indefinido e cai na dispersão heurística de 10%
func meanForecast(series []*domain.MonthlyMarTotal) (point, stdDev float64) {
	values := seriesValues(series)

	point = meanOf(values)
	if len(values) > 1 {
		stdDev = sampleStdDev(values)
	} else {
		stdDev = point * singlePointSpreadRatio
	}

	return point, stdDev
}

func seriesValues(series []*domain.MonthlyMarTotal) []float64 {
	values := make([]float64, len(series))
	for i, total := range series {
		values[i] = float64(total.TotalMar)
	}
	return values
}

// noDataOutcome é a linha sentinela emitida quando nenhuma linha histórica
// corresponde à chave alvo
func noDataOutcome() forecastOutcome {
	return forecastOutcome{
		method: domain.ForecastMethodNoData,
	}
}

// newForecast resolve o resultado intermediário na única linha de saída.
// A estimativa e os limites são truncados para inteiros (corte, não
// arredondamento); o limite inferior já chega grampeado em zero
func (s *Service) newForecast(outcome forecastOutcome, createdAt time.Time) *domain.MarForecast {
	return &domain.MarForecast{
		ConnectionName:       s.cfg.Forecast.ConnectionName,
		DestinationID:        s.cfg.Forecast.DestinationID,
		ForecastMonth:        outcome.nextMonth,
		ForecastedTotalMar:   int64(outcome.point),
		ForecastLowerBound:   int64(outcome.lower),
		ForecastUpperBound:   int64(outcome.upper),
		ForecastMethod:       outcome.method,
		HistoricalMonthsUsed: outcome.monthsUsed,
		LastHistoricalMonth:  outcome.lastMonth,
		ForecastCreatedAt:    createdAt,
	}
}

// LatestForecast retorna a previsão materializada mais recente
func (s *Service) LatestForecast() (*domain.MarForecast, error) {
	forecast, err := s.forecastRepo.GetLatest()
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar a previsão materializada: %w", err)
	}

	return forecast, nil
}

// AvailableMonths retorna os meses históricos disponíveis para a chave alvo
func (s *Service) AvailableMonths() (*domain.AvailableMonths, error) {
	series, err := s.loadSeries()
	if err != nil {
		return nil, err
	}

	available := &domain.AvailableMonths{
		Periods: make([]string, 0, len(series)),
		Years:   make([]string, 0),
		Months:  make([]string, 0),
	}

	yearSeen := make(map[string]bool)
	monthSeen := make(map[string]bool)

	for _, total := range series {
		period := utils.MonthPeriod(total.Month)
		available.Periods = append(available.Periods, period)

		// Extrair ano e mês do período (formato mm-yyyy)
		month := period[:2]
		year := period[3:]

		if !monthSeen[month] {
			monthSeen[month] = true
			available.Months = append(available.Months, month)
		}

		if !yearSeen[year] {
			yearSeen[year] = true
			available.Years = append(available.Years, year)
		}
	}

	sort.Strings(available.Years)
	sort.Strings(available.Months)

	return available, nil
}

// HistorySeries retorna a série mensal agregada da chave alvo com a variação
// percentual sobre o mês anterior
func (s *Service) HistorySeries() (*domain.MarHistorySummary, error) {
	series, err := s.loadSeries()
	if err != nil {
		return nil, err
	}

	summary := &domain.MarHistorySummary{
		ConnectionName: s.cfg.Forecast.ConnectionName,
		DestinationID:  s.cfg.Forecast.DestinationID,
		Months:         make([]*domain.MarMonthlyPoint, 0, len(series)),
		TotalMonths:    len(series),
	}

	for i, total := range series {
		point := &domain.MarMonthlyPoint{
			Period:   utils.MonthPeriod(total.Month),
			TotalMar: total.TotalMar,
		}

		if i > 0 && series[i-1].TotalMar != 0 {
			previous := float64(series[i-1].TotalMar)
			growth := utils.RoundWithTwoDecimalPlace((float64(total.TotalMar) - previous) / previous * 100)
			point.GrowthPct = &growth
		}

		summary.Months = append(summary.Months, point)
	}

	return summary, nil
}

// loadSeries lê a tabela histórica e agrega a série mensal da chave alvo
func (s *Service) loadSeries() ([]*domain.MonthlyMarTotal, error) {
	history, err := s.historyRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar o histórico de MAR: %w", err)
	}

	return aggregateMonthly(s.filterByTarget(history)), nil
}
