package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	dcache "github.com/fcecin/betacorn/internal/dice-service/cache"
	dhttp "github.com/fcecin/betacorn/internal/dice-service/http"
	"github.com/fcecin/betacorn/internal/dice-service/producer"
	"github.com/fcecin/betacorn/internal/dice-service/pubsub"
	"github.com/fcecin/betacorn/internal/dice-service/treasury"
	"github.com/fcecin/betacorn/internal/dice-service/ws"
	"github.com/fcecin/betacorn/internal/engine"
	"github.com/fcecin/betacorn/internal/shared/cache"
	"github.com/fcecin/betacorn/internal/shared/config"
	"github.com/fcecin/betacorn/internal/shared/kafka"
	"github.com/fcecin/betacorn/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New("dice-service", cfg.Env)
	defer log.Sync()

	// Redis: cache da mesa + canal de broadcast do WS
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writers (game_matched e game_settled)
	matchedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGameMatched)
	defer matchedWriter.Close()
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGameSettled)
	defer settledWriter.Close()

	// deps
	pay := treasury.New(cfg.TreasuryURL) // custódia externa do token
	eng := engine.New(pay)
	publ := producer.NewKafkaPublisher(matchedWriter, settledWriter)
	tableCache := dcache.New(rdb, 30*time.Second)
	bcast := pubsub.NewRedisBroadcaster(rdb)

	api := dhttp.NewServer(log, eng, publ, tableCache, bcast, cfg.RedisPubSubChannel)

	// Métricas do jogo
	matched := prometheus.NewCounter(prometheus.CounterOpts{Name: "dice_games_matched_total", Help: "apostas casadas com oferta"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "dice_games_settled_total", Help: "jogos liquidados por outcome"}, []string{"outcome"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{Name: "dice_operations_rejected_total", Help: "operações rejeitadas"})
	prometheus.MustRegister(matched, settled, rejected)

	api.OnMatched = func() { matched.Inc() }
	api.OnSettled = func(outcome string) { settled.WithLabelValues(outcome).Inc() }
	api.OnRejected = func() { rejected.Inc() }

	// WS: feed ao vivo da mesa, alimentado pelo pub/sub do Redis
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(context.Background(), rdb, hub)

	mux := http.NewServeMux()
	mux.Handle("/", api.Router())
	mux.HandleFunc("/ws", hub.HandleWS)

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: mux,
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	log.Info("dice-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
