package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fcecin/betacorn/pkg/contracts/events"
)

type KafkaPublisher struct {
	MatchedWriter *kafka.Writer
	SettledWriter *kafka.Writer
}

func NewKafkaPublisher(matched, settled *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{MatchedWriter: matched, SettledWriter: settled}
}

func (p *KafkaPublisher) PublishGameMatched(ctx context.Context, e events.GameMatched) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.MatchedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.Commitment), Value: b})
}

func (p *KafkaPublisher) PublishGameSettled(ctx context.Context, e events.GameSettled) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.SettledWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.Commitment), Value: b})
}
