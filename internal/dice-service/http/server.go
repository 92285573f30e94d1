package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fcecin/betacorn/internal/dice-service/dto"
	"github.com/fcecin/betacorn/internal/engine"
	"github.com/fcecin/betacorn/pkg/contracts/events"
)

// Publisher publica eventos de jogo no Kafka
type Publisher interface {
	PublishGameMatched(context.Context, events.GameMatched) error
	PublishGameSettled(context.Context, events.GameSettled) error
}

// TableCache guarda o snapshot da mesa pra leitura sem lock do engine
type TableCache interface {
	GetTable(ctx context.Context, dst *dto.TableResponse) (bool, error)
	SetTable(ctx context.Context, v dto.TableResponse) error
}

// Broadcaster repassa o snapshot da mesa pro canal pub/sub do WS
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Server expõe os entry points do contrato via HTTP. A autenticação da
// identidade do chamador acontece antes, na borda; aqui a identidade
// declarada já chega verificada
type Server struct {
	log   *zap.Logger
	eng   *engine.Engine
	publ  Publisher
	cache TableCache
	bcast Broadcaster
	bchan string

	OnMatched  func()       // métricas (counter++)
	OnSettled  func(string) // métricas por outcome
	OnRejected func()       // métricas
}

func NewServer(log *zap.Logger, eng *engine.Engine, publ Publisher, cache TableCache, bcast Broadcaster, bchan string) *Server {
	return &Server{log: log, eng: eng, publ: publ, cache: cache, bcast: bcast, bchan: bchan}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/transfers", s.transfer)
	r.Post("/v1/withdrawals", s.withdraw)
	r.Post("/v1/commitments", s.commit)
	r.Post("/v1/commitments/cancel", s.cancelCommit)
	r.Post("/v1/reveals", s.reveal)
	r.Post("/v1/collects", s.collect)
	r.Get("/v1/accounts/{owner}", s.getAccount)
	r.Get("/v1/table", s.getTable)
	return r
}

// transfer é o webhook da custódia: depósito de host ou aposta de
// player, conforme o memo. Rejeição aqui significa que a transferência
// inteira deve ser recusada pela custódia
func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.From == "" {
		httpError(w, http.StatusBadRequest, "from required")
		return
	}

	m, err := s.eng.Transfer(req.From, req.AmountShells, req.Memo)
	if err != nil {
		s.reject(w, err)
		return
	}

	if m == nil {
		// memo "deposit": só credita bankroll
		s.refreshTable(r.Context())
		writeJSON(w, http.StatusOK, dto.MatchResponse{Status: "DEPOSITED"})
		return
	}

	if err := s.publ.PublishGameMatched(r.Context(), events.GameMatched{
		Commitment:  m.Commitment.String(),
		Host:        m.Host,
		Player:      m.Player,
		Guess:       m.Guess.String(),
		WagerShells: m.Wager,
		DeadlineTs:  m.Deadline.Unix(),
	}); err != nil {
		s.log.Warn("publish game_matched", zap.Error(err))
	}
	if s.OnMatched != nil {
		s.OnMatched()
	}
	s.refreshTable(r.Context())

	writeJSON(w, http.StatusOK, dto.MatchResponse{
		Matched:      true,
		Commitment:   m.Commitment.String(),
		Host:         m.Host,
		Guess:        m.Guess.String(),
		WagerShells:  m.Wager,
		DeadlineUnix: m.Deadline.Unix(),
		Status:       "MATCHED",
	})
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.To == "" {
		httpError(w, http.StatusBadRequest, "to required")
		return
	}

	if err := s.eng.Withdraw(r.Context(), req.To, req.AmountShells); err != nil {
		s.reject(w, err)
		return
	}

	s.refreshTable(r.Context())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"WITHDRAWN"}`))
}

func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	var req dto.CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return
	}
	commitment, err := engine.ParseDigest(req.Commitment)
	if err != nil || req.Host == "" {
		httpError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if err := s.eng.Commit(req.Host, commitment); err != nil {
		s.reject(w, err)
		return
	}

	s.refreshTable(r.Context())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"COMMITTED"}`))
}

func (s *Server) cancelCommit(w http.ResponseWriter, r *http.Request) {
	var req dto.CancelCommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return
	}
	commitment, err := engine.ParseDigest(req.Commitment)
	if err != nil || req.Host == "" {
		httpError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if err := s.eng.CancelCommit(req.Host, commitment); err != nil {
		s.reject(w, err)
		return
	}

	s.refreshTable(r.Context())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"CANCELLED"}`))
}

// reveal não exige identidade: quem tem o source pode liquidar o jogo
func (s *Server) reveal(w http.ResponseWriter, r *http.Request) {
	var req dto.RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return
	}
	commitment, err := engine.ParseDigest(req.Commitment)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid commitment")
		return
	}
	source, err := engine.ParseDigest(req.Source)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid source")
		return
	}

	st, err := s.eng.Reveal(r.Context(), commitment, source)
	if err != nil {
		s.reject(w, err)
		return
	}

	s.publishSettled(r.Context(), st)
	s.refreshTable(r.Context())
	writeJSON(w, http.StatusOK, settlementDTO(st))
}

func (s *Server) collect(w http.ResponseWriter, r *http.Request) {
	var req dto.CollectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.Player == "" {
		httpError(w, http.StatusBadRequest, "player required")
		return
	}

	collected, err := s.eng.Collect(r.Context(), req.Player)
	// Mesmo com erro no meio, os jogos já coletados saíram da mesa e
	// precisam ser publicados
	for _, st := range collected {
		s.publishSettled(r.Context(), st)
	}
	if err != nil {
		s.reject(w, err)
		return
	}

	resp := dto.CollectResponse{Collected: make([]dto.SettlementResponse, 0, len(collected))}
	for _, st := range collected {
		resp.Collected = append(resp.Collected, settlementDTO(st))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	bal, offers, ok := s.eng.AccountInfo(owner)
	if !ok {
		httpError(w, http.StatusNotFound, "no account object found")
		return
	}
	writeJSON(w, http.StatusOK, dto.AccountResponse{Owner: owner, BalanceShells: bal, OpenOffers: offers})
}

func (s *Server) getTable(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		var fromCache dto.TableResponse
		if ok, _ := s.cache.GetTable(r.Context(), &fromCache); ok {
			writeJSON(w, http.StatusOK, fromCache)
			return
		}
	}

	offers, maxBet := s.eng.TableStatus()
	resp := dto.TableResponse{OpenOffers: offers, MaxBetShells: maxBet, UpdatedUnixMs: time.Now().UnixMilli()}
	if s.cache != nil {
		_ = s.cache.SetTable(r.Context(), resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) publishSettled(ctx context.Context, st engine.Settlement) {
	if err := s.publ.PublishGameSettled(ctx, events.GameSettled{
		Commitment:   st.Commitment.String(),
		Host:         st.Host,
		Player:       st.Player,
		Outcome:      st.Outcome,
		WagerShells:  st.Wager,
		PlayerPayout: st.PlayerPayout,
		HostPayout:   st.HostPayout,
	}); err != nil {
		s.log.Warn("publish game_settled", zap.Error(err))
	}
	if s.OnSettled != nil {
		s.OnSettled(st.Outcome)
	}
}

// refreshTable atualiza o snapshot da mesa no cache e avisa o canal de
// broadcast do WS. Falha aqui não derruba a operação: o estado de
// verdade mora no engine
func (s *Server) refreshTable(ctx context.Context) {
	offers, maxBet := s.eng.TableStatus()
	resp := dto.TableResponse{OpenOffers: offers, MaxBetShells: maxBet, UpdatedUnixMs: time.Now().UnixMilli()}
	if s.cache != nil {
		if err := s.cache.SetTable(ctx, resp); err != nil {
			s.log.Warn("table cache set", zap.Error(err))
		}
	}
	if s.bcast != nil {
		payload, _ := json.Marshal(map[string]any{
			"type":            "table_update",
			"open_offers":     resp.OpenOffers,
			"max_bet_shells":  resp.MaxBetShells,
			"updated_unix_ms": resp.UpdatedUnixMs,
		})
		if err := s.bcast.Publish(ctx, s.bchan, payload); err != nil {
			s.log.Warn("table broadcast", zap.Error(err))
		}
	}
}

// reject traduz os erros do engine pro status HTTP certo, preservando a
// mensagem: "no bets available" e "the current maximum bet is X" são
// funcionais, o cliente usa o texto pra reagir
func (s *Server) reject(w http.ResponseWriter, err error) {
	if s.OnRejected != nil {
		s.OnRejected()
	}

	var maxBet *engine.MaxBetError
	switch {
	case errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrBelowMinTransfer),
		errors.Is(err, engine.ErrMemoTooLong),
		errors.Is(err, engine.ErrBadMemo):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrNoAccount),
		errors.Is(err, engine.ErrCommitmentNotFound):
		httpError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrNotYourCommitment):
		httpError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, engine.ErrOverdrawn),
		errors.Is(err, engine.ErrBelowMinBalance),
		errors.Is(err, engine.ErrDustRemainder),
		errors.Is(err, engine.ErrSmallWithdrawal),
		errors.Is(err, engine.ErrZeroBankroll),
		errors.Is(err, engine.ErrBadSeed),
		errors.Is(err, engine.ErrCommitmentExists),
		errors.Is(err, engine.ErrAlreadyInPlay),
		errors.Is(err, engine.ErrSourceMismatch),
		errors.Is(err, engine.ErrNoBetsAvailable),
		errors.As(err, &maxBet):
		httpError(w, http.StatusConflict, err.Error())
	default:
		// Provavelmente a custódia falhou no pagamento externo
		s.log.Error("operation failed", zap.Error(err))
		httpError(w, http.StatusBadGateway, err.Error())
	}
}

func settlementDTO(st engine.Settlement) dto.SettlementResponse {
	return dto.SettlementResponse{
		Commitment:   st.Commitment.String(),
		Host:         st.Host,
		Player:       st.Player,
		Outcome:      st.Outcome,
		WagerShells:  st.Wager,
		PlayerPayout: st.PlayerPayout,
		HostPayout:   st.HostPayout,
	}
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
