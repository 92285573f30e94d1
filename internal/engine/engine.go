package engine

import (
	"context"
	"crypto/sha256"
	"sort"
	"sync"
	"time"
)

// Constantes do protocolo, em shells (menor unidade do token, 4 casas)
const (
	MinTransfer int64 = 100    // piso de depósito, aposta e saque parcial
	MinBalance  int64 = 500000 // piso de bankroll pra criar/manter conta
	RiskRatio   int64 = 100    // aposta máxima = 1% do bankroll do host
	FeeShell    int64 = 1      // pago ao perdedor pra notificar a derrota

	GameTimeout  = 5 * time.Minute
	MaxMemoBytes = 256
)

// Prefixo de um sha256 de 32 bytes zerados. Um source zerado é trivial
// de reconstruir, então esse commitment é rejeitado como "bad seed"
var zeroSourcePrefix = func() uint64 {
	var zero Digest
	d := Digest(sha256.Sum256(zero[:]))
	return d.Prefix()
}()

// Payer é o colaborador externo de custódia do token: transfere shells
// pra fora do contrato. Ou completa de forma síncrona, ou devolve erro
// e a operação inteira do engine é abortada sem mutação
type Payer interface {
	Pay(ctx context.Context, to string, amount int64, memo string) error
}

// Engine é a máquina de estados do jogo: ledger de bankrolls, pool de
// ofertas e pool de jogos, tudo em memória, mutado de forma serial.
// Um único mutex garante a disciplina de execução totalmente ordenada;
// o Payer é chamado com o lock tomado e não pode reentrar no engine
type Engine struct {
	mu    sync.Mutex
	payer Payer
	now   func() time.Time

	accounts     map[string]int64  // owner -> saldo em shells
	offers       map[uint64]*Offer // prefixo do commitment -> oferta aberta
	offersByHost map[string]map[uint64]struct{}
	bets         map[uint64]*Bet // prefixo do commitment -> placeholder ou jogo ativo
	betsByPlayer map[string]map[uint64]struct{}
}

func New(payer Payer) *Engine {
	return &Engine{
		payer:        payer,
		now:          time.Now,
		accounts:     make(map[string]int64),
		offers:       make(map[uint64]*Offer),
		offersByHost: make(map[string]map[uint64]struct{}),
		bets:         make(map[uint64]*Bet),
		betsByPlayer: make(map[string]map[uint64]struct{}),
	}
}

// sortedOwners devolve os donos de conta em ordem crescente. O scan do
// matching precisa de uma ordem total e reprodutível
func (e *Engine) sortedOwners() []string {
	owners := make([]string, 0, len(e.accounts))
	for o := range e.accounts {
		owners = append(owners, o)
	}
	sort.Strings(owners)
	return owners
}

// sortedPrefixes idem, pra varrer jogos de um índice secundário
func sortedPrefixes(set map[uint64]struct{}) []uint64 {
	ps := make([]uint64, 0, len(set))
	for p := range set {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	return ps
}

func (e *Engine) insertOffer(of *Offer) {
	p := of.Commitment.Prefix()
	e.offers[p] = of
	set, ok := e.offersByHost[of.Host]
	if !ok {
		set = make(map[uint64]struct{})
		e.offersByHost[of.Host] = set
	}
	set[p] = struct{}{}
}

func (e *Engine) removeOffer(prefix uint64) {
	of, ok := e.offers[prefix]
	if !ok {
		return
	}
	delete(e.offers, prefix)
	if set, ok := e.offersByHost[of.Host]; ok {
		delete(set, prefix)
		if len(set) == 0 {
			delete(e.offersByHost, of.Host)
		}
	}
}

func (e *Engine) removeBet(prefix uint64) {
	b, ok := e.bets[prefix]
	if !ok {
		return
	}
	delete(e.bets, prefix)
	if b.Player != "" {
		if set, ok := e.betsByPlayer[b.Player]; ok {
			delete(set, prefix)
			if len(set) == 0 {
				delete(e.betsByPlayer, b.Player)
			}
		}
	}
}

// Balance retorna o saldo de um host, se a conta existir
func (e *Engine) Balance(owner string) (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	bal, ok := e.accounts[owner]
	return bal, ok
}

// AccountInfo retorna saldo e número de ofertas abertas de um host
func (e *Engine) AccountInfo(owner string) (balance int64, openOffers int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	bal, ok := e.accounts[owner]
	if !ok {
		return 0, 0, false
	}
	return bal, len(e.offersByHost[owner]), true
}

// TableStatus retorna o estado da mesa: quantas ofertas abertas e qual
// a maior aposta que algum host consegue cobrir agora. O máximo só
// considera hosts com oferta aberta; abaixo do piso de transferência,
// reporta zero (mesa fechada)
func (e *Engine) TableStatus() (openOffers int, maxBet int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var maxBankroll int64
	for host := range e.offersByHost {
		if bal := e.accounts[host]; bal > maxBankroll {
			maxBankroll = bal
		}
	}
	maxBet = maxBankroll / RiskRatio
	if maxBet < MinTransfer {
		maxBet = 0
	}
	return len(e.offers), maxBet
}
