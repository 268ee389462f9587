package repository

import (
	"context"

	"RegimeWatch/internal/domain/models"
	domsvc "RegimeWatch/internal/domain/service"
	pkgkafka "RegimeWatch/pkg/kafka"
)

// KafkaAlertPublisher forwards alert events to a Kafka topic for downstream
// consumers. Messages are keyed by symbol so per-symbol ordering holds.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates the publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) domsvc.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, symbol string, a models.AlertEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(symbol), map[string]interface{}{
		"symbol":     symbol,
		"kind":       a.Kind,
		"from":       a.From,
		"to":         a.To,
		"confidence": a.Confidence,
	})
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
