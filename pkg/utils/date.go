package utils

import (
	"strings"
	"time"
)

// ParseDate converte uma data no formato YYYY-MM-DD. Texto vazio retorna nil, sem erro.
func ParseDate(dateStr string) (*time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return nil, err
	}

	return &date, nil
}

// FormatDate formata uma data como YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
