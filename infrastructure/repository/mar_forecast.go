package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/mar-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/mar-forecast-api/internal/domain"
)

const (
	marForecastTable = "mar_forecast"
)

type MarForecastRepository interface {
	Replace(ctx context.Context, forecast *domain.MarForecast) error
	GetLatest() (*domain.MarForecast, error)
}

type marForecastRepository struct {
	conn *postgres.Connection
}

func NewMarForecastRepository(conn *postgres.Connection) MarForecastRepository {
	return &marForecastRepository{
		conn: conn,
	}
}

// Replace materializa a previsão substituindo a tabela inteira: a tabela de
// destino carrega exatamente uma linha por execução do pipeline
func (r *marForecastRepository) Replace(ctx context.Context, forecast *domain.MarForecast) error {
	deleteSQL, deleteArgs, err := squirrel.
		Delete(marForecastTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	insertSQL, insertArgs, err := squirrel.
		Insert(marForecastTable).
		Columns(
			"connection_name",
			"destination_id",
			"forecast_month",
			"forecasted_total_mar",
			"forecast_lower_bound",
			"forecast_upper_bound",
			"forecast_method",
			"historical_months_used",
			"last_historical_month",
			"forecast_created_at",
		).
		Values(
			forecast.ConnectionName,
			forecast.DestinationID,
			forecast.ForecastMonth,
			forecast.ForecastedTotalMar,
			forecast.ForecastLowerBound,
			forecast.ForecastUpperBound,
			forecast.ForecastMethod,
			forecast.HistoricalMonthsUsed,
			forecast.LastHistoricalMonth,
			forecast.ForecastCreatedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	err = r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(deleteSQL, deleteArgs...); err != nil {
			return fmt.Errorf("erro ao limpar a tabela de previsão: %w", err)
		}

		if _, err := tx.Exec(insertSQL, insertArgs...); err != nil {
			return fmt.Errorf("erro ao inserir a previsão: %w", err)
		}

		return nil
	})
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return err
	}

	return nil
}

// GetLatest retorna a previsão materializada mais recente, ou nil quando a
// tabela ainda não foi populada
func (r *marForecastRepository) GetLatest() (*domain.MarForecast, error) {
	query, args, err := squirrel.
		Select(
			"connection_name",
			"destination_id",
			"forecast_month",
			"forecasted_total_mar",
			"forecast_lower_bound",
			"forecast_upper_bound",
			"forecast_method",
			"historical_months_used",
			"last_historical_month",
			"forecast_created_at",
		).
		From(marForecastTable).
		OrderBy("forecast_created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)
	forecast, err := r.scanForecast(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear previsão de MAR: %w", err)
	}

	return forecast, nil
}

func (r *marForecastRepository) scanForecast(row *sql.Row) (*domain.MarForecast, error) {
	forecast := &domain.MarForecast{}
	var forecastMonth, lastHistoricalMonth sql.NullTime

	err := row.Scan(
		&forecast.ConnectionName,
		&forecast.DestinationID,
		&forecastMonth,
		&forecast.ForecastedTotalMar,
		&forecast.ForecastLowerBound,
		&forecast.ForecastUpperBound,
		&forecast.ForecastMethod,
		&forecast.HistoricalMonthsUsed,
		&lastHistoricalMonth,
		&forecast.ForecastCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if forecastMonth.Valid {
		forecast.ForecastMonth = &forecastMonth.Time
	}

	if lastHistoricalMonth.Valid {
		forecast.LastHistoricalMonth = &lastHistoricalMonth.Time
	}

	return forecast, nil
}
