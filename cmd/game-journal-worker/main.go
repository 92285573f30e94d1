package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	gjDto "github.com/fcecin/betacorn/internal/game-journal/dto"
	"github.com/fcecin/betacorn/internal/shared/config"
	"github.com/fcecin/betacorn/internal/shared/db"
	"github.com/fcecin/betacorn/internal/shared/kafka"
	"github.com/fcecin/betacorn/internal/shared/logger"
	"github.com/fcecin/betacorn/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com Postgres pro histórico de jogos liquidados
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: consome game_settled pra persistir o histórico
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		GroupID:  "game-journal",
		Topic:    cfg.TopicGameSettled,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicGameSettledDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGameSettledDLQ)
		defer dlqWriter.Close()
	}

	// Métricas do worker
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "journal_messages_consumed_total", Help: "mensagens consumidas"})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{Name: "journal_db_writes_total", Help: "escritas no banco"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "journal_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, errorsBy)

	// Servidor de métricas Prometheus e healthcheck
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("game-journal-worker started", zap.String("consume", cfg.TopicGameSettled))

	ctx := context.Background()

	// Loop principal: consome game_settled e escreve o histórico
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			errorsBy.WithLabelValues("read").Inc()
			time.Sleep(time.Second)
			continue
		}
		consumed.Inc()

		var settled gjDto.GameSettled
		if jerr := json.Unmarshal(msg.Value, &settled); jerr != nil {
			log.Error("unmarshal game_settled", zap.Error(jerr))
			errorsBy.WithLabelValues("decode").Inc()
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
			}
			continue
		}

		if err := insertGameHistory(ctx, pg, &settled); err != nil {
			log.Error("journal insert", zap.String("commitment", settled.Commitment), zap.Error(err))
			errorsBy.WithLabelValues("db").Inc()
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, settled.Commitment, msg.Value)
			}
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
			continue
		}
		persisted.Inc()
	}
}

// insertGameHistory registra um jogo liquidado no histórico. O mesmo
// commitment pode reaparecer pela DLQ, então o insert é idempotente
func insertGameHistory(ctx context.Context, pg *sql.DB, s *gjDto.GameSettled) error {
	_, err := pg.ExecContext(ctx, `
		INSERT INTO game_history (id, commitment, host, player, outcome, wager_shells, player_payout_shells, host_payout_shells, settled_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (commitment) DO NOTHING`,
		uuid.NewString(), s.Commitment, s.Host, nullable(s.Player), s.Outcome,
		s.WagerShells, s.PlayerPayout, s.HostPayout, time.UnixMilli(s.TsUnixMs))
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
