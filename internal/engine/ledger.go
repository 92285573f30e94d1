package engine

import (
	"context"
	"math"
)

// addBalance credita shells na conta do owner, criando a conta se não
// existir. Com enforceMin, a criação exige o bankroll mínimo: players
// varrem a lista inteira de contas pra achar host, então conta não pode
// ser de graça. Crédito que estouraria int64 rejeita sem mudar nada
func (e *Engine) addBalance(owner string, amount int64, enforceMin bool) error {
	bal, ok := e.accounts[owner]
	if !ok {
		if enforceMin && amount < MinBalance {
			return ErrBelowMinBalance
		}
		e.accounts[owner] = amount
		return nil
	}
	if amount > math.MaxInt64-bal {
		return ErrBalanceOverflow
	}
	e.accounts[owner] = bal + amount
	return nil
}

// subBalanceCheck valida um débito sem aplicar nada. Devolve o saldo
// resultante pra quem for aplicar depois (o pagamento externo acontece
// entre a validação e a aplicação)
func (e *Engine) subBalanceCheck(owner string, amount int64, enforceMin bool) (result int64, err error) {
	bal, ok := e.accounts[owner]
	if !ok {
		return 0, ErrNoAccount
	}
	if amount > bal {
		return 0, ErrOverdrawn
	}
	result = bal - amount
	if result > 0 && enforceMin {
		// Saque parcial não pode deixar poeira nem ser menor que o piso
		if result < MinBalance {
			return 0, ErrDustRemainder
		}
		if amount < MinTransfer {
			return 0, ErrSmallWithdrawal
		}
	}
	return result, nil
}

// subBalanceApply aplica o resultado de um débito já validado. Zerar o
// saldo destrói a conta e é um pedido implícito de cancelar toda oferta
// ainda não casada do host: ofertas e seus placeholders caem juntos,
// na mesma transição
func (e *Engine) subBalanceApply(owner string, result int64) {
	if result > 0 {
		e.accounts[owner] = result
		return
	}
	delete(e.accounts, owner)

	// Toda oferta aberta tem por definição um placeholder espelho no
	// pool de jogos; jogos ativos do host não são tocados
	for _, prefix := range sortedPrefixes(e.offersByHost[owner]) {
		e.removeBet(prefix)
		e.removeOffer(prefix)
	}
}

// Withdraw debita e paga shells de volta pro dono da conta. A única
// mutação acontece depois do pagamento externo ter completado; se o
// pagamento falha, nada muda
func (e *Engine) Withdraw(ctx context.Context, to string, amount int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 {
		return ErrInvalidAmount
	}

	result, err := e.subBalanceCheck(to, amount, true)
	if err != nil {
		return err
	}

	if err := e.payer.Pay(ctx, to, amount, ""); err != nil {
		return err
	}

	e.subBalanceApply(to, result)
	return nil
}
