package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount      = errors.New("must transfer positive quantity")
	ErrBelowMinTransfer   = errors.New("minimum quantity not met")
	ErrMemoTooLong        = errors.New("memo has more than 256 bytes")
	ErrBadMemo            = errors.New("memo must be: 'odd', 'even' or 'deposit'")
	ErrNoAccount          = errors.New("no account object found")
	ErrOverdrawn          = errors.New("overdrawn balance")
	ErrBalanceOverflow    = errors.New("addition overflow")
	ErrBelowMinBalance    = errors.New("deposit does not meet minimum balance requirement")
	ErrDustRemainder      = errors.New("withdrawal must either withdraw the full balance, or the remainder must meet the minimum balance requirement")
	ErrSmallWithdrawal    = errors.New("withdrawals below the minimum transfer are only allowed when emptying the account")
	ErrZeroBankroll       = errors.New("cannot commit with a bankroll of zero")
	ErrBadSeed            = errors.New("a zeroed-out source is not an acceptable commitment seed")
	ErrCommitmentExists   = errors.New("commitment already exists or was generated from a bad seed")
	ErrCommitmentNotFound = errors.New("commitment not found")
	ErrNotYourCommitment  = errors.New("cannot cancel another host's commitment")
	ErrAlreadyInPlay      = errors.New("cannot cancel commitment: already in play")
	ErrSourceMismatch     = errors.New("source does not hash to the commitment")
	ErrNoBetsAvailable    = errors.New("no bets available")
)

// MaxBetError é o erro funcional do matching: nenhum host cobre a
// aposta, mas existe mesa aberta; a mensagem informa o tamanho máximo
// que o player pode tentar de novo
type MaxBetError struct {
	MaxBet int64 // em shells
}

func (e *MaxBetError) Error() string {
	return fmt.Sprintf("the current maximum bet is %d shells", e.MaxBet)
}
