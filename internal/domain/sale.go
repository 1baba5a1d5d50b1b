package domain

import "time"

// SalesRecord é uma linha do arquivo de vendas com o timestamp já validado
type SalesRecord struct {
	Line      int
	Timestamp time.Time
	Fields    []string
}

// SalesTable mantém a tabela original (para exibição) e os registros tipados
type SalesTable struct {
	Table           Table
	TimestampColumn string
	Records         []SalesRecord
}

// DailySalesPoint é a quantidade de vendas de um dia do calendário
type DailySalesPoint struct {
	Date  time.Time
	Count int
}

// TruncateToDate descarta a hora, mantendo ano/mês/dia no fuso do próprio timestamp
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
