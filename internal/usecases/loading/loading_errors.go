package loading

import (
	"errors"
	"fmt"
)

// Erros de leitura dos arquivos enviados
var (
	ErrEmptyFile        = errors.New("arquivo vazio")
	ErrMalformedFile    = errors.New("arquivo não é um CSV válido")
	ErrBlankHeader      = errors.New("cabeçalho sem nomes de coluna")
	ErrMissingColumn    = errors.New("coluna obrigatória ausente")
	ErrInvalidTimestamp = errors.New("data e hora inválida")
)

// ParseError é um erro de leitura com o contexto do arquivo e da linha
type ParseError struct {
	Err    error  // Erro base
	Source string // Arquivo de origem (estoque ou vendas)
	Line   int    // Linha do arquivo, contando o cabeçalho como linha 1 (0 quando não se aplica)
	Column string // Coluna envolvida (quando aplicável)
	Value  string // Valor que não pôde ser lido (quando aplicável)
}

// Error implementa a interface error
func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Source, e.Err.Error())
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (linha %d)", msg, e.Line)
	}
	if e.Column != "" {
		msg = fmt.Sprintf("%s [coluna %q]", msg, e.Column)
	}
	if e.Value != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Value)
	}
	return msg
}

// Unwrap retorna o erro subjacente
func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(source string, err error, line int) *ParseError {
	return &ParseError{
		Err:    err,
		Source: source,
		Line:   line,
	}
}
