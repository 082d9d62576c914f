package repository

import (
	"context"
	"time"

	"AlphaPull/internal/domain/models"
	domrepo "AlphaPull/internal/domain/repository"
	pkgkafka "AlphaPull/pkg/kafka"
)

// KafkaInsightPublisher delivers consensus insights to a Kafka topic, keyed
// by symbol so downstream consumers see per-symbol ordering.
type KafkaInsightPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaInsightPublisher creates the Kafka-backed publisher.
func NewKafkaInsightPublisher(producer *pkgkafka.Producer, topic string) domrepo.InsightPublisher {
	return &KafkaInsightPublisher{producer: producer, topic: topic}
}

func (p *KafkaInsightPublisher) Publish(ctx context.Context, in models.Insight) error {
	return p.producer.Publish(ctx, p.topic, []byte(in.Symbol), insightPayload(in))
}

func (p *KafkaInsightPublisher) PublishBatch(ctx context.Context, insights []models.Insight) error {
	if len(insights) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(insights))
	for i, in := range insights {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(in.Symbol),
			Value: insightPayload(in),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaInsightPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func insightPayload(in models.Insight) map[string]interface{} {
	return map[string]interface{}{
		"symbol":       in.Symbol,
		"direction":    in.Direction,
		"confidence":   in.ConfidenceOrDefault(),
		"magnitude":    in.Magnitude,
		"source_model": in.SourceModel,
		"emitted_at":   time.Now().UTC().Format(time.RFC3339Nano),
	}
}
