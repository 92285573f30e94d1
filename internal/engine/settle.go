package engine

import (
	"context"
	"math"
)

// Reveal recebe o source de um commitment e liquida o jogo. O bit mais
// baixo do último byte do source decide: 1 é ímpar, 0 é par. O vencedor
// leva 2x a aposta menos um shell, que vai pro perdedor só pra ele ver
// uma transferência e saber que perdeu; o valor total conservado é
// exatamente 2x a aposta.
//
// Reveal de placeholder (oferta que ninguém tomou) é só um jeito
// alternativo de cancelar: não há player pra pagar
func (e *Engine) Reveal(ctx context.Context, commitment Digest, source Digest) (Settlement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if HashSource(source) != commitment {
		return Settlement{}, ErrSourceMismatch
	}

	prefix := commitment.Prefix()
	bet, ok := e.bets[prefix]
	if !ok {
		return Settlement{}, ErrCommitmentNotFound
	}

	if bet.Placeholder() {
		e.removeOffer(prefix)
		e.removeBet(prefix)
		return Settlement{
			Commitment: commitment,
			Host:       bet.Host,
			Outcome:    OutcomeCancelled,
		}, nil
	}

	winnings := 2*bet.Wager - FeeShell

	var playerPayout, hostPayout int64
	var outcome, memo string
	if Guess(source[31]&1) == bet.Guess {
		playerPayout, hostPayout = winnings, FeeShell
		outcome, memo = OutcomePlayerWin, "Win!"
	} else {
		playerPayout, hostPayout = FeeShell, winnings
		outcome, memo = OutcomeHostWin, "Lose"
	}

	// O crédito do host é validado antes do pagamento externo; depois
	// do Pay não dá mais pra abortar
	if bal, ok := e.accounts[bet.Host]; ok && hostPayout > math.MaxInt64-bal {
		return Settlement{}, ErrBalanceOverflow
	}

	// Pagamento externo primeiro: se abortar, o jogo continua na mesa
	if err := e.payer.Pay(ctx, bet.Player, playerPayout, memo); err != nil {
		return Settlement{}, err
	}

	// Parte do host volta direto pro bankroll, sem piso
	_ = e.addBalance(bet.Host, hostPayout, false)
	e.removeBet(prefix)

	return Settlement{
		Commitment:   commitment,
		Host:         bet.Host,
		Player:       bet.Player,
		Outcome:      outcome,
		Wager:        bet.Wager,
		PlayerPayout: playerPayout,
		HostPayout:   hostPayout,
	}, nil
}

// Collect varre os jogos do player e paga 2x a aposta em cada um cujo
// prazo de reveal estourou: penalidade cheia pro host que sumiu, sem
// desconto de shell. Jogos ainda no prazo ficam como estão; chamar de
// novo sem nada vencido é um no-op.
//
// Cada jogo vencido liquida como unidade própria: se um pagamento
// externo falhar, os anteriores já saíram da mesa e o que falhou fica
// pra uma próxima chamada
func (e *Engine) Collect(ctx context.Context, player string) ([]Settlement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()

	var collected []Settlement
	for _, prefix := range sortedPrefixes(e.betsByPlayer[player]) {
		bet := e.bets[prefix]
		if !now.After(bet.Deadline) {
			continue
		}

		if err := e.payer.Pay(ctx, player, 2*bet.Wager, "Win! (Timeout)"); err != nil {
			return collected, err
		}
		e.removeBet(prefix)

		collected = append(collected, Settlement{
			Commitment:   bet.Commitment,
			Host:         bet.Host,
			Player:       player,
			Outcome:      OutcomeTimeout,
			Wager:        bet.Wager,
			PlayerPayout: 2 * bet.Wager,
		})
	}
	return collected, nil
}
