package engine

// PlaceWager tenta casar uma aposta com algum host da mesa. O scan é
// linear sobre todas as contas, em ordem crescente de dono, e o
// primeiro host que cobre a aposta (no máximo 1% do bankroll em risco)
// e tem oferta aberta leva. O(n) nos hosts é aceitável aqui: a
// cardinalidade de hosts é pequena perto do custo de execução de cada
// operação, e ordem fixa mantém o first-fit reprodutível
func (e *Engine) placeWager(player string, amount int64, guess Guess) (Match, error) {
	var maxBankroll int64

	for _, owner := range e.sortedOwners() {
		bal := e.accounts[owner]

		if bal/RiskRatio >= amount {
			hostOffers := e.offersByHost[owner]
			if len(hostOffers) == 0 {
				continue
			}

			// Pega a primeira oferta livre do host (menor prefixo)
			prefix := sortedPrefixes(hostOffers)[0]

			// Fundeia o jogo debitando o bankroll do host. Como a
			// aposta é no máximo 1% do saldo, o resultado nunca zera
			result, err := e.subBalanceCheck(owner, amount, false)
			if err != nil {
				return Match{}, err
			}
			e.subBalanceApply(owner, result)

			// Preenche o placeholder in place: vira jogo ativo
			bet := e.bets[prefix]
			bet.Guess = guess
			bet.Player = player
			bet.Wager = amount
			bet.Deadline = e.now().Add(GameTimeout)

			set, ok := e.betsByPlayer[player]
			if !ok {
				set = make(map[uint64]struct{})
				e.betsByPlayer[player] = set
			}
			set[prefix] = struct{}{}

			// A oferta sai da mesa; só o jogo ativo fica
			e.removeOffer(prefix)

			return Match{
				Commitment: bet.Commitment,
				Host:       owner,
				Player:     player,
				Guess:      guess,
				Wager:      amount,
				Deadline:   bet.Deadline,
			}, nil
		}

		// Host pequeno demais pra essa aposta: se ele tem oferta
		// aberta, o bankroll dele ainda conta pro "máximo apostável"
		// reportado no erro. Bankroll grande sem oferta não conta
		if bal > maxBankroll && len(e.offersByHost[owner]) > 0 {
			maxBankroll = bal
		}
	}

	maxBet := maxBankroll / RiskRatio
	if maxBet < MinTransfer {
		return Match{}, ErrNoBetsAvailable
	}
	return Match{}, &MaxBetError{MaxBet: maxBet}
}
