package engine

// Commit registra uma proposta cega de jogo do host. Só aceita host com
// bankroll depositado ("show the money first") e prefixo de commitment
// inédito. Insere a oferta e o placeholder espelho na mesma transição:
// o player que um dia tomar essa oferta não pode pagar pela alocação do
// registro, então o host pré-aloca agora
func (e *Engine) Commit(host string, commitment Digest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.accounts[host]; !ok {
		return ErrZeroBankroll
	}

	prefix := commitment.Prefix()
	if prefix == zeroSourcePrefix {
		return ErrBadSeed
	}

	// O pool de jogos é superconjunto do pool de ofertas, então checar
	// unicidade só aqui basta
	if _, ok := e.bets[prefix]; ok {
		return ErrCommitmentExists
	}

	e.insertOffer(&Offer{Commitment: commitment, Host: host})
	e.bets[prefix] = &Bet{
		Commitment: commitment,
		Host:       host,
		Guess:      GuessNone,
		Deadline:   e.now(), // só informativo enquanto placeholder
	}
	return nil
}

// CancelCommit desfaz uma oferta ainda não casada, removendo oferta e
// placeholder juntos. Oferta já em jogo não pode ser cancelada; nesse
// caso o caminho é revelar ou esperar o timeout
func (e *Engine) CancelCommit(host string, commitment Digest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prefix := commitment.Prefix()
	bet, ok := e.bets[prefix]
	if !ok {
		return ErrCommitmentNotFound
	}
	if bet.Host != host {
		return ErrNotYourCommitment
	}
	if !bet.Placeholder() {
		return ErrAlreadyInPlay
	}

	e.removeBet(prefix)
	e.removeOffer(prefix)
	return nil
}
