package forecasting

import "errors"

var (
	ErrInsufficientHistory = errors.New("histórico insuficiente: são necessárias ao menos 2 datas distintas")
	ErrUnorderedHistory    = errors.New("histórico fora de ordem ou com datas repetidas")
	ErrInvalidHorizon      = errors.New("horizonte de previsão inválido")
)
