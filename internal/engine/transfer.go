package engine

import (
	"strings"
)

// Transfer é o ponto de entrada chamado pela custódia do token quando
// alguém transfere shells pra dentro do contrato. O memo decide o que a
// transferência significa: "deposit" credita bankroll de host, "odd"/"1"
// e "even"/"0" são apostas de player. Qualquer outro memo rejeita a
// transferência inteira: não existe aplicação parcial
func (e *Engine) Transfer(from string, amount int64, memo string) (*Match, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	// Piso único pra depósito e aposta: barra spam e serve de aposta mínima
	if amount < MinTransfer {
		return nil, ErrBelowMinTransfer
	}
	if len(memo) > MaxMemoBytes {
		return nil, ErrMemoTooLong
	}

	switch strings.ToLower(memo) {
	case "odd", "1":
		m, err := e.placeWager(from, amount, GuessOdd)
		if err != nil {
			return nil, err
		}
		return &m, nil
	case "even", "0":
		m, err := e.placeWager(from, amount, GuessEven)
		if err != nil {
			return nil, err
		}
		return &m, nil
	case "deposit":
		return nil, e.addBalance(from, amount, true)
	default:
		return nil, ErrBadMemo
	}
}
