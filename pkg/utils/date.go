package utils

import (
	"fmt"
	"time"
)

func ParseDate(dateStr string) (*time.Time, error) {
	var date time.Time

	if dateStr != "" {
		incomingDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, err
		}

		date = incomingDate
	}

	return &date, nil
}

// MonthPeriod formata uma data como período mensal no formato mm-yyyy
func MonthPeriod(date time.Time) string {
	return fmt.Sprintf("%02d-%04d", int(date.Month()), date.Year())
}

// TruncateToMonth normaliza uma data para o primeiro dia do mês, em UTC
func TruncateToMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth retorna o primeiro dia do mês seguinte à data informada
func NextMonth(date time.Time) time.Time {
	return TruncateToMonth(date).AddDate(0, 1, 0)
}
