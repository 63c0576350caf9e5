package domain

// AvailableMonths representa os meses históricos disponíveis na tabela de
// MAR para a chave alvo
type AvailableMonths struct {
	Periods []string `json:"periods"` // Lista de períodos no formato mm-yyyy
	Years   []string `json:"years"`   // Lista de anos únicos disponíveis
	Months  []string `json:"months"`  // Lista de meses únicos disponíveis
}
