package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/push"
)

var newSyncProducer = sarama.NewSyncProducer

// Producer publishes push events to Kafka. It is the fan-out side of the
// push-notification sink; the worker consumes the same topic.
type Producer struct {
	sp    sarama.SyncProducer
	topic string
}

// NewProducer creates a push-event producer. Missing broker or topic config
// disables push entirely and returns nil without error.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	sp, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create push producer: %w", err)
	}
	return &Producer{sp: sp, topic: topic}, nil
}

// Send publishes one push event keyed by recipient.
func (p *Producer) Send(_ context.Context, e push.Event) error {
	if p == nil {
		return nil
	}

	payload, err := json.Marshal(FromDomain(e))
	if err != nil {
		return fmt.Errorf("marshal push event: %w", err)
	}

	_, _, err = p.sp.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.UserID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("send push event: %w", err)
	}
	return nil
}

// Close shuts the underlying producer down.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.sp.Close()
}

var _ push.Sink = (*Producer)(nil)
