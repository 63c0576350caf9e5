package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/mar-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/mar-forecast-api/internal/domain"
)

const (
	marHistoryTable = "mar_table_history"
)

// ErrInsufficientSchema indica que a tabela histórica não possui as colunas
// obrigatórias. É uma violação de contrato do pipeline que produz a tabela,
// portanto a execução corrente deve ser abortada
var ErrInsufficientSchema = errors.New("colunas obrigatórias ausentes na tabela de histórico de MAR")

// Colunas obrigatórias do contrato de entrada, em minúsculas
var requiredHistoryColumns = []string{
	"connection_name",
	"destination_id",
	"measured_month",
	"total_monthly_active_rows",
}

type MarHistoryRepository interface {
	ListAll() ([]*domain.MarHistoryEntry, error)
}

type marHistoryRepository struct {
	conn *postgres.Connection
}

func NewMarHistoryRepository(conn *postgres.Connection) MarHistoryRepository {
	return &marHistoryRepository{
		conn: conn,
	}
}

// ListAll lê a tabela histórica inteira, como o pipeline upstream a produziu.
// Os nomes das colunas não têm caixa garantida e colunas extras são toleradas:
// o resultset é normalizado para minúsculas antes do scan e apenas as quatro
// colunas do contrato são aproveitadas
func (r *marHistoryRepository) ListAll() ([]*domain.MarHistoryEntry, error) {
	query, args, err := squirrel.
		Select("*").
		From(marHistoryTable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return []*domain.MarHistoryEntry{}, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("erro ao obter colunas do resultset: %w", err)
	}

	columnIndex, err := indexHistoryColumns(columns)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.MarHistoryEntry, 0)
	for rows.Next() {
		entry, err := r.scanHistoryRow(rows, columns, columnIndex)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear histórico de MAR: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return entries, nil
}

// indexHistoryColumns normaliza os nomes das colunas para minúsculas e valida
// a presença das colunas obrigatórias do contrato
func indexHistoryColumns(columns []string) (map[string]int, error) {
	columnIndex := make(map[string]int, len(columns))
	for i, column := range columns {
		columnIndex[strings.ToLower(column)] = i
	}

	for _, required := range requiredHistoryColumns {
		if _, ok := columnIndex[required]; !ok {
			return nil, fmt.Errorf("%w: coluna %q não encontrada", ErrInsufficientSchema, required)
		}
	}

	return columnIndex, nil
}

func (r *marHistoryRepository) scanHistoryRow(rows *sql.Rows, columns []string, columnIndex map[string]int) (*domain.MarHistoryEntry, error) {
	values := make([]interface{}, len(columns))
	for i := range values {
		values[i] = new(interface{})
	}

	if err := rows.Scan(values...); err != nil {
		return nil, err
	}

	entry := &domain.MarHistoryEntry{}

	connectionName, err := stringAt(values, columnIndex["connection_name"])
	if err != nil {
		return nil, fmt.Errorf("coluna connection_name: %w", err)
	}
	entry.ConnectionName = connectionName

	destinationID, err := stringAt(values, columnIndex["destination_id"])
	if err != nil {
		return nil, fmt.Errorf("coluna destination_id: %w", err)
	}
	entry.DestinationID = destinationID

	measuredMonth, err := timeAt(values, columnIndex["measured_month"])
	if err != nil {
		return nil, fmt.Errorf("coluna measured_month: %w", err)
	}
	entry.MeasuredMonth = measuredMonth

	totalMar, err := int64At(values, columnIndex["total_monthly_active_rows"])
	if err != nil {
		return nil, fmt.Errorf("coluna total_monthly_active_rows: %w", err)
	}
	entry.TotalMonthlyActiveRows = totalMar

	return entry, nil
}

func stringAt(values []interface{}, index int) (string, error) {
	raw := *(values[index].(*interface{}))
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("tipo inesperado %T", raw)
	}
}

func timeAt(values []interface{}, index int) (time.Time, error) {
	raw := *(values[index].(*interface{}))
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case []byte:
		parsed, err := time.Parse("2006-01-02", string(v))
		if err != nil {
			return time.Time{}, fmt.Errorf("data inválida %q: %w", string(v), err)
		}
		return parsed, nil
	case string:
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, fmt.Errorf("data inválida %q: %w", v, err)
		}
		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("tipo inesperado %T", raw)
	}
}

func int64At(values []interface{}, index int) (int64, error) {
	raw := *(values[index].(*interface{}))
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case []byte:
		var parsed int64
		if _, err := fmt.Sscanf(string(v), "%d", &parsed); err != nil {
			return 0, fmt.Errorf("valor inválido %q: %w", string(v), err)
		}
		return parsed, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("tipo inesperado %T", raw)
	}
}
