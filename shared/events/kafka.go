package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// kafkaBatchTimeout caps how long WriteMessages waits for a batch to fill.
const kafkaBatchTimeout = 10 * time.Millisecond

// KafkaPublisher writes events to the Kafka topic named after the stream,
// keyed by event type.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           kafkaBatchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	msg, err := kafkaMessage(stream, eventType, data)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func kafkaMessage(stream, eventType string, data any) (kafka.Message, error) {
	eventJSON, err := newEvent(eventType, data)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: stream,
		Key:   []byte(eventType),
		Value: eventJSON,
	}, nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
