package loading

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

const (
	SourceInventory = "estoque"
	SourceSales     = "vendas"

	// DefaultTimestampColumn é a coluna de data e hora do arquivo de vendas
	DefaultTimestampColumn = "Data e Hora"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Layouts aceitos para a coluna de data e hora, na ordem em que são tentados.
// As variantes com barra seguem o padrão brasileiro (dia/mês/ano).
// Dia, mês e hora aceitam um ou dois dígitos.
var timestampLayouts = []string{
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2T15:04:05",
	"2006-1-2T15:04",
	time.RFC3339Nano,
	"2006-1-2",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
}

// Loader lê os arquivos de estoque e vendas enviados pelo usuário
type Loader interface {
	LoadInventory(r io.Reader) (*domain.Table, error)
	LoadSales(r io.Reader) (*domain.SalesTable, error)
}

type Service struct {
	timestampColumn string
	location        *time.Location
}

func NewService(timestampColumn string) Loader {
	if strings.TrimSpace(timestampColumn) == "" {
		timestampColumn = DefaultTimestampColumn
	}

	return &Service{
		timestampColumn: timestampColumn,
		location:        time.UTC,
	}
}

// LoadInventory lê o arquivo de estoque. Nenhuma coluna é obrigatória.
func (s *Service) LoadInventory(r io.Reader) (*domain.Table, error) {
	table, _, err := readTable(SourceInventory, r)
	return table, err
}

// LoadSales lê o arquivo de vendas e valida a coluna de data e hora de todas as linhas.
// Basta uma linha inválida para o arquivo inteiro ser rejeitado.
func (s *Service) LoadSales(r io.Reader) (*domain.SalesTable, error) {
	table, lines, err := readTable(SourceSales, r)
	if err != nil {
		return nil, err
	}

	idx := table.ColumnIndex(s.timestampColumn)
	if idx < 0 {
		return nil, &ParseError{
			Err:    ErrMissingColumn,
			Source: SourceSales,
			Column: s.timestampColumn,
		}
	}

	records := make([]domain.SalesRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		line := lines[i]

		timestamp, err := ParseTimestamp(row[idx], s.location)
		if err != nil {
			return nil, &ParseError{
				Err:    ErrInvalidTimestamp,
				Source: SourceSales,
				Line:   line,
				Column: s.timestampColumn,
				Value:  row[idx],
			}
		}

		records = append(records, domain.SalesRecord{
			Line:      line,
			Timestamp: timestamp,
			Fields:    row,
		})
	}

	return &domain.SalesTable{
		Table:           *table,
		TimestampColumn: s.timestampColumn,
		Records:         records,
	}, nil
}

// ParseTimestamp interpreta um valor da coluna de data e hora.
// Valores sem fuso horário são interpretados em loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidTimestamp
	}

	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Wrapf(ErrInvalidTimestamp, "formato não reconhecido: %q", value)
}

// readTable devolve a tabela e, para cada linha de dados, a linha física em que ela começa no arquivo
func readTable(source string, r io.Reader) (*domain.Table, []int, error) {
	if r == nil {
		return nil, nil, newParseError(source, ErrEmptyFile, 0)
	}

	reader := bufio.NewReader(r)
	if prefix, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = reader.Discard(len(utf8BOM))
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = 0 // todas as linhas devem ter a quantidade de colunas do cabeçalho

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, nil, newParseError(source, ErrEmptyFile, 0)
	}
	if err != nil {
		return nil, nil, wrapCSVError(source, err)
	}

	headerLine, _ := csvReader.FieldPos(0)
	columns, err := normalizeHeader(header)
	if err != nil {
		return nil, nil, newParseError(source, err, headerLine)
	}

	rows := make([][]string, 0)
	lines := make([]int, 0)
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, wrapCSVError(source, err)
		}

		line, _ := csvReader.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
	}

	return &domain.Table{
		Columns: columns,
		Rows:    rows,
	}, lines, nil
}

// normalizeHeader remove espaços das bordas e renomeia colunas repetidas como "nome.1", "nome.2"...
// pulando sufixos que já existem no cabeçalho.
func normalizeHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	blank := true

	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name != "" {
			blank = false
		}

		if count, exists := seen[name]; exists {
			base := name
			for {
				count++
				name = fmt.Sprintf("%s.%d", base, count)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = count
		}
		seen[name] = 0

		columns[i] = name
	}

	if blank {
		return nil, ErrBlankHeader
	}

	return columns, nil
}

func wrapCSVError(source string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{
			Err:    errors.Wrap(ErrMalformedFile, csvErr.Err.Error()),
			Source: source,
			Line:   csvErr.Line,
		}
	}

	return &ParseError{
		Err:    errors.Wrap(ErrMalformedFile, err.Error()),
		Source: source,
	}
}
