package forecasting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/mar-forecast-api/infrastructure/repository/mocks"
	"github.com/vfg2006/mar-forecast-api/internal/config"
	"github.com/vfg2006/mar-forecast-api/internal/domain"
	"go.uber.org/mock/gomock"
)

const (
	testConnection  = "fivetran_log"
	testDestination = "durable_biased"
)

func testConfig() *config.Config {
	return &config.Config{
		Forecast: config.Forecast{
			ConnectionName: testConnection,
			DestinationID:  testDestination,
		},
	}
}

func historyEntry(connection, destination string, year int, month time.Month, day int, total int64) *domain.MarHistoryEntry {
	return &domain.MarHistoryEntry{
		ConnectionName:         connection,
		DestinationID:          destination,
		MeasuredMonth:          time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		TotalMonthlyActiveRows: total,
	}
}

func targetEntry(year int, month time.Month, day int, total int64) *domain.MarHistoryEntry {
	return historyEntry(testConnection, testDestination, year, month, day, total)
}

func TestService_Forecast(t *testing.T) {
	createdAt := time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		history  []*domain.MarHistoryEntry
		validate func(t *testing.T, result *domain.MarForecast)
	}{
		{
			name:    "Sem nenhuma linha de histórico - deve emitir a linha sentinela no_data",
			history: []*domain.MarHistoryEntry{},
			validate: func(t *testing.T, result *domain.MarForecast) {
				assert.Equal(t, domain.ForecastMethodNoData, result.ForecastMethod)
				assert.Equal(t, int64(0), result.ForecastedTotalMar)
				assert.Equal(t, int64(0), result.ForecastLowerBound)
				assert.Equal(t, int64(0), result.ForecastUpperBound)
				assert.Equal(t, 0, result.HistoricalMonthsUsed)
				assert.Nil(t, result.ForecastMonth)
				assert.Nil(t, result.LastHistoricalMonth)

				// A chave alvo é ecoada mesmo sem histórico
				assert.Equal(t, testConnection, result.ConnectionName)
				assert.Equal(t, testDestination, result.DestinationID)
			},
		},
		{
			name: "Linhas apenas de outras chaves - deve emitir a linha sentinela no_data",
			history: []*domain.MarHistoryEntry{
				historyEntry("salesforce", testDestination, 2025, time.May, 1, 48210),
				historyEntry(testConnection, "upward_herald", 2025, time.June, 1, 50904),
				nil,
			},
			validate: func(t *testing.T, result *domain.MarForecast) {
				assert.Equal(t, domain.ForecastMethodNoData, result.ForecastMethod)
				assert.Equal(t, int64(0), result.ForecastedTotalMar)
				assert.Equal(t, 0, result.HistoricalMonthsUsed)
				assert.Nil(t, result.ForecastMonth)
			},
		},
		{
			name: "Tendência linear perfeita de seis meses - deve combinar regressão e média móvel",
			history: []*domain.MarHistoryEntry{
				targetEntry(2024, time.January, 1, 100),
				targetEntry(2024, time.February, 1, 110),
				targetEntry(2024, time.March, 1, 120),
				targetEntry(2024, time.April, 1, 130),
				targetEntry(2024, time.May, 1, 140),
				targetEntry(2024, time.June, 1, 150),
			},
			validate: func(t *testing.T, result *domain.MarForecast) {
				// Regressão projeta 160 no índice 6, média móvel dos três
				// últimos é 140: 0.7*160 + 0.3*140 = 154
				assert.Equal(t, int64(154), result.ForecastedTotalMar)

				// Desvio amostral de [100..150] = sqrt(350), intervalo de 95%
				// truncado para inteiros
				assert.Equal(t, int64(117), result.ForecastLowerBound)
				assert.Equal(t, int64(190), result.ForecastUpperBound)

				assert.Equal(t, domain.ForecastMethodLinearTrendWithMA, result.ForecastMethod)
				assert.Equal(t, 6, result.HistoricalMonthsUsed)

				require.NotNil(t, result.LastHistoricalMonth)
				assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), *result.LastHistoricalMonth)

				require.NotNil(t, result.ForecastMonth)
				assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), *result.ForecastMonth)
			},
		},
		{
			name: "Mais de seis meses de histórico - a regressão deve usar apenas a janela recente",
			history: []*domain.MarHistoryEntry{
				targetEntry(2024, time.November, 1, 9999),
				targetEntry(2024, time.December, 1, 8888),
				targetEntry(2025, time.January, 1, 100),
				targetEntry(2025, time.February, 1, 110),
				targetEntry(2025, time.March, 1, 120),
				targetEntry(2025, time.April, 1, 130),
				targetEntry(2025, time.May, 1, 140),
				targetEntry(2025, time.June, 1, 150),
			},
			validate: func(t *testing.T, result *domain.MarForecast) {
				// Os meses fora da janela de seis não influenciam a projeção,
				// mas continuam contados no total de meses usados
				assert.Equal(t, int64(154), result.ForecastedTotalMar)
				assert.Equal(t, int64(117), result.ForecastLowerBound)
				assert.Equal(t, int64(190), result.ForecastUpperBound)
				assert.Equal(t, 8, result.HistoricalMonthsUsed)

				require.NotNil(t, result.ForecastMonth)
				assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), *result.ForecastMonth)
			},
		},
		{
			name: "Um único mês - deve usar a dispersão heurística de dez por cento",
			history: []*domain.MarHistoryEntry{
				targetEntry(2025, time.June, 1, 1000),
			},
			validate: func(t *testing.T, result *domain.MarForecast) {
				assert.Equal(t, int64(1000), result.ForecastedTotalMar)
				assert.Equal(t, int64(804), result.ForecastLowerBound)
				assert.Equal(t, int64(1196), result.ForecastUpperBound)
				assert.Equal(t, 1, result.HistoricalMonthsUsed)

				require.NotNil(t, result.ForecastMonth)
				assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), *result.ForecastMonth)
			},
		},
		{
			name: "Dois meses - deve usar a média simples com desvio amostral",
			history: []*domain.MarHistoryEntry{
				targetEntry(2025, time.May, 1, 100),
				targetEntry(2025, time.June, 1, 200),
			},
			validate: func(t *testing.T, result *domain.MarForecast) {
				// Média 150, desvio amostral sqrt(5000)
				assert.Equal(t, int64(150), result.ForecastedTotalMar)
				assert.Equal(t, int64(11), result.ForecastLowerBound)
				assert.Equal(t, int64(288), result.ForecastUpperBound)
				assert.Equal(t, 2, result.HistoricalMonthsUsed)
			},
		},
		{
			name: "Histórico curto muito disperso - deve grampear o limite inferior em zero",
			history: []*domain.MarHistoryEntry{
				targetEntry(2025, time.May, 1, 100),
				targetEntry(2025, time.June, 1, 1000),
			},
			validate: func(t *testing.T, result *domain.MarForecast) {
				assert.Equal(t, int64(550), result.ForecastedTotalMar)
				assert.Equal(t, int64(0), result.ForecastLowerBound)
				assert.Equal(t, int64(1797), result.ForecastUpperBound)
			},
		},
		{
			name: "Linhas do mesmo mês - deve somar antes de prever",
			history: []*domain.MarHistoryEntry{
				targetEntry(2025, time.June, 15, 100),
				targetEntry(2025, time.June, 20, 50),
			},
			validate: func(t *testing.T, result *domain.MarForecast) {
				// As duas linhas agregam em um único mês de 150; o ramo de mês
				// único aplica a dispersão heurística sobre o total somado
				assert.Equal(t, 1, result.HistoricalMonthsUsed)
				assert.Equal(t, int64(150), result.ForecastedTotalMar)
				assert.Equal(t, int64(120), result.ForecastLowerBound)
				assert.Equal(t, int64(179), result.ForecastUpperBound)
			},
		},
		{
			name: "Dias diferentes dentro do mês - deve normalizar para o primeiro dia",
			history: []*domain.MarHistoryEntry{
				targetEntry(2024, time.December, 15, 500),
			},
			validate: func(t *testing.T, result *domain.MarForecast) {
				require.NotNil(t, result.LastHistoricalMonth)
				assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), *result.LastHistoricalMonth)

				// O mês previsto avança um mês de calendário, virando o ano
				require.NotNil(t, result.ForecastMonth)
				assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), *result.ForecastMonth)
			},
		},
		{
			name: "Chaves misturadas - deve considerar apenas a chave alvo",
			history: []*domain.MarHistoryEntry{
				targetEntry(2025, time.April, 1, 100),
				historyEntry("salesforce", "upward_herald", 2025, time.April, 1, 77777),
				targetEntry(2025, time.May, 1, 110),
				historyEntry("salesforce", "upward_herald", 2025, time.May, 1, 88888),
				targetEntry(2025, time.June, 1, 120),
				historyEntry(testConnection, "upward_herald", 2025, time.June, 1, 99999),
			},
			validate: func(t *testing.T, result *domain.MarForecast) {
				// Série alvo [100,110,120]: regressão projeta 130, média móvel
				// 110, combinação 0.7*130 + 0.3*110 = 124
				assert.Equal(t, 3, result.HistoricalMonthsUsed)
				assert.Equal(t, int64(124), result.ForecastedTotalMar)
				assert.Equal(t, int64(104), result.ForecastLowerBound)
				assert.Equal(t, int64(143), result.ForecastUpperBound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &Service{cfg: testConfig()}

			result := service.forecastAt(tt.history, createdAt)

			require.NotNil(t, result)
			assert.Equal(t, createdAt, result.ForecastCreatedAt)

			// Ordenação dos limites vale para qualquer resultado
			assert.LessOrEqual(t, result.ForecastLowerBound, result.ForecastedTotalMar)
			assert.LessOrEqual(t, result.ForecastedTotalMar, result.ForecastUpperBound)
			assert.GreaterOrEqual(t, result.ForecastLowerBound, int64(0))

			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestService_Forecast_RotuloDoMetodo(t *testing.T) {
	shortHistory := []*domain.MarHistoryEntry{
		targetEntry(2025, time.May, 1, 100),
		targetEntry(2025, time.June, 1, 200),
	}

	longHistory := []*domain.MarHistoryEntry{
		targetEntry(2025, time.January, 1, 100),
		targetEntry(2025, time.February, 1, 110),
		targetEntry(2025, time.March, 1, 120),
		targetEntry(2025, time.April, 1, 130),
		targetEntry(2025, time.May, 1, 140),
		targetEntry(2025, time.June, 1, 150),
	}

	tests := []struct {
		name               string
		distinctMeanMethod bool
		history            []*domain.MarHistoryEntry
		expectedMethod     string
	}{
		{
			name:               "Ramo de média com rótulo compartilhado - comportamento padrão",
			distinctMeanMethod: false,
			history:            shortHistory,
			expectedMethod:     domain.ForecastMethodLinearTrendWithMA,
		},
		{
			name:               "Ramo de média com rótulo próprio - atrás de configuração",
			distinctMeanMethod: true,
			history:            shortHistory,
			expectedMethod:     domain.ForecastMethodMeanBased,
		},
		{
			name:               "Ramo de tendência não muda com a configuração",
			distinctMeanMethod: true,
			history:            longHistory,
			expectedMethod:     domain.ForecastMethodLinearTrendWithMA,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Forecast.DistinctMeanMethod = tt.distinctMeanMethod

			service := &Service{cfg: cfg}
			result := service.Forecast(tt.history)

			require.NotNil(t, result)
			assert.Equal(t, tt.expectedMethod, result.ForecastMethod)
		})
	}
}

func TestService_Forecast_TimestampUnico(t *testing.T) {
	service := &Service{cfg: testConfig()}

	history := []*domain.MarHistoryEntry{
		targetEntry(2025, time.June, 1, 1000),
	}

	before := time.Now().UTC()
	result := service.Forecast(history)
	after := time.Now().UTC()

	require.NotNil(t, result)
	assert.False(t, result.ForecastCreatedAt.Before(before))
	assert.False(t, result.ForecastCreatedAt.After(after))
}

func TestService_LatestForecast(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockForecastRepo := mocks.NewMockMarForecastRepository(ctrl)
	service := &Service{
		cfg:          testConfig(),
		forecastRepo: mockForecastRepo,
	}

	t.Run("Deve retornar a previsão materializada", func(t *testing.T) {
		stored := &domain.MarForecast{
			ConnectionName:     testConnection,
			DestinationID:      testDestination,
			ForecastedTotalMar: 154,
			ForecastMethod:     domain.ForecastMethodLinearTrendWithMA,
		}

		mockForecastRepo.EXPECT().GetLatest().Return(stored, nil)

		result, err := service.LatestForecast()

		assert.NoError(t, err)
		assert.Equal(t, stored, result)
	})

	t.Run("Deve retornar nil quando o pipeline ainda não executou", func(t *testing.T) {
		mockForecastRepo.EXPECT().GetLatest().Return(nil, nil)

		result, err := service.LatestForecast()

		assert.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("Deve propagar erro do repositório", func(t *testing.T) {
		mockForecastRepo.EXPECT().GetLatest().Return(nil, assert.AnError)

		result, err := service.LatestForecast()

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestService_AvailableMonths(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHistoryRepo := mocks.NewMockMarHistoryRepository(ctrl)
	service := &Service{
		cfg:         testConfig(),
		historyRepo: mockHistoryRepo,
	}

	t.Run("Deve listar períodos em ordem cronológica com anos e meses únicos", func(t *testing.T) {
		mockHistoryRepo.EXPECT().ListAll().Return([]*domain.MarHistoryEntry{
			targetEntry(2024, time.December, 1, 200),
			targetEntry(2024, time.November, 1, 100),
			targetEntry(2025, time.January, 1, 300),
			targetEntry(2025, time.January, 15, 50),
			historyEntry("salesforce", "upward_herald", 2025, time.February, 1, 999),
		}, nil)

		result, err := service.AvailableMonths()

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, []string{"11-2024", "12-2024", "01-2025"}, result.Periods)
		assert.Equal(t, []string{"2024", "2025"}, result.Years)
		assert.Equal(t, []string{"01", "11", "12"}, result.Months)
	})

	t.Run("Deve propagar erro do repositório", func(t *testing.T) {
		mockHistoryRepo.EXPECT().ListAll().Return(nil, assert.AnError)

		result, err := service.AvailableMonths()

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestService_HistorySeries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHistoryRepo := mocks.NewMockMarHistoryRepository(ctrl)
	service := &Service{
		cfg:         testConfig(),
		historyRepo: mockHistoryRepo,
	}

	t.Run("Deve calcular a variação percentual mês a mês", func(t *testing.T) {
		mockHistoryRepo.EXPECT().ListAll().Return([]*domain.MarHistoryEntry{
			targetEntry(2025, time.April, 1, 100),
			targetEntry(2025, time.May, 1, 150),
			targetEntry(2025, time.June, 1, 120),
		}, nil)

		result, err := service.HistorySeries()

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, testConnection, result.ConnectionName)
		assert.Equal(t, testDestination, result.DestinationID)
		assert.Equal(t, 3, result.TotalMonths)
		require.Len(t, result.Months, 3)

		// Primeiro mês não tem comparação
		assert.Equal(t, "04-2025", result.Months[0].Period)
		assert.Equal(t, int64(100), result.Months[0].TotalMar)
		assert.Nil(t, result.Months[0].GrowthPct)

		// 100 -> 150: crescimento de 50%
		assert.Equal(t, "05-2025", result.Months[1].Period)
		require.NotNil(t, result.Months[1].GrowthPct)
		assert.Equal(t, 50.0, *result.Months[1].GrowthPct)

		// 150 -> 120: queda de 20%
		assert.Equal(t, "06-2025", result.Months[2].Period)
		require.NotNil(t, result.Months[2].GrowthPct)
		assert.Equal(t, -20.0, *result.Months[2].GrowthPct)
	})

	t.Run("Deve omitir a variação quando o mês anterior é zero", func(t *testing.T) {
		mockHistoryRepo.EXPECT().ListAll().Return([]*domain.MarHistoryEntry{
			targetEntry(2025, time.May, 1, 0),
			targetEntry(2025, time.June, 1, 120),
		}, nil)

		result, err := service.HistorySeries()

		assert.NoError(t, err)
		require.Len(t, result.Months, 2)
		assert.Nil(t, result.Months[0].GrowthPct)
		assert.Nil(t, result.Months[1].GrowthPct)
	})

	t.Run("Deve propagar erro do repositório", func(t *testing.T) {
		mockHistoryRepo.EXPECT().ListAll().Return(nil, assert.AnError)

		result, err := service.HistorySeries()

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}
