package engine

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"
)

// Digest é um hash sha256 de 32 bytes, usado tanto para o commitment
// quanto para o source revelado
type Digest [32]byte

// Prefix retorna os primeiros 64 bits do digest, que é a chave das
// tabelas de ofertas e jogos. Colisões de prefixo são rejeitadas no
// commit, nunca resolvidas
func (d Digest) Prefix() uint64 { return binary.LittleEndian.Uint64(d[:8]) }

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// ParseDigest decodifica um digest em hex (64 caracteres)
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, err
	}
	if len(b) != len(d) {
		return d, errors.New("digest must be 32 bytes")
	}
	copy(d[:], b)
	return d, nil
}

// HashSource calcula o commitment correspondente a um source
func HashSource(source Digest) Digest { return sha256.Sum256(source[:]) }

// Guess é o palpite do player: par ou ímpar. GuessNone marca o
// placeholder ainda sem player
type Guess uint8

const (
	GuessEven Guess = 0
	GuessOdd  Guess = 1
	GuessNone Guess = 0x7f
)

func (g Guess) String() string {
	switch g {
	case GuessEven:
		return "even"
	case GuessOdd:
		return "odd"
	default:
		return "none"
	}
}

// Offer é uma proposta de jogo ainda sem player
type Offer struct {
	Commitment Digest
	Host       string
}

// Bet é a entrada da tabela de jogos. Nasce como placeholder (espelho
// da oferta, sem player) e vira jogo ativo quando o matching preenche
// guess/player/wager no mesmo registro
type Bet struct {
	Commitment Digest
	Host       string
	Guess      Guess
	Player     string
	Wager      int64
	Deadline   time.Time
}

// Placeholder indica que o registro ainda é só o espelho pré-alocado da
// oferta, sem player casado
func (b *Bet) Placeholder() bool { return b.Guess == GuessNone }

// Match descreve um casamento bem sucedido de aposta com oferta
type Match struct {
	Commitment Digest
	Host       string
	Player     string
	Guess      Guess
	Wager      int64
	Deadline   time.Time
}

// Resultados possíveis de um jogo que saiu da mesa
const (
	OutcomePlayerWin = "player_win"
	OutcomeHostWin   = "host_win"
	OutcomeCancelled = "cancelled"
	OutcomeTimeout   = "timeout"
)

// Settlement descreve a saída de um jogo: reveal com player, reveal de
// oferta vazia (cancelamento implícito) ou coleta por timeout
type Settlement struct {
	Commitment   Digest
	Host         string
	Player       string
	Outcome      string
	Wager        int64
	PlayerPayout int64
	HostPayout   int64
}
