// Package domain contém as estruturas de dados do domínio da aplicação
package domain

// Table é uma planilha carregada em memória, com colunas e linhas na ordem do arquivo
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len retorna a quantidade de linhas de dados (sem o cabeçalho)
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex retorna a posição de uma coluna pelo nome, ou -1 se ela não existir
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, column := range t.Columns {
		if column == name {
			return i
		}
	}
	return -1
}
