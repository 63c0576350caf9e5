package domain

import (
	"time"
)

// MarHistoryEntry representa uma linha da tabela histórica de MAR (Monthly
// Active Rows): o volume mensal medido para um par conector/destino
type MarHistoryEntry struct {
	ConnectionName         string    `json:"connection_name"`
	DestinationID          string    `json:"destination_id"`
	MeasuredMonth          time.Time `json:"measured_month"`
	TotalMonthlyActiveRows int64     `json:"total_monthly_active_rows"`
}

// MonthlyMarTotal representa o total mensal agregado para a chave alvo,
// com meses únicos e em ordem cronológica
type MonthlyMarTotal struct {
	Month    time.Time `json:"month"`
	TotalMar int64     `json:"total_mar"`
}

// MarMonthlyPoint é um ponto da série mensal no relatório de histórico,
// com a variação percentual sobre o mês anterior
type MarMonthlyPoint struct {
	Period    string   `json:"period"` // Período no formato mm-yyyy
	TotalMar  int64    `json:"total_mar"`
	GrowthPct *float64 `json:"growth_pct"`
}

// MarHistorySummary representa a série mensal agregada da chave alvo
type MarHistorySummary struct {
	ConnectionName string             `json:"connection_name"`
	DestinationID  string             `json:"destination_id"`
	Months         []*MarMonthlyPoint `json:"months"`
	TotalMonths    int                `json:"total_months"`
}
