// Package kafka publishes sub-order status changes for downstream consumers
// (analytics, shop dashboards, billing).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"fulfillment/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StatusPublisher implements ports.OrderEventPublisher. Messages are keyed by
// order id so the changes of one order stay ordered within a partition.
type StatusPublisher struct {
	writer messageWriter
}

func NewWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewStatusPublisher(writer *kafka.Writer) *StatusPublisher {
	return &StatusPublisher{writer: writer}
}

func (p *StatusPublisher) PublishStatusChanged(ctx context.Context, event ports.SubOrderStatusChanged) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode status change: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("sub-order-status-changed")},
		},
	})
	if err != nil {
		return fmt.Errorf("write status change: %w", err)
	}
	return nil
}

func (p *StatusPublisher) Close() error {
	return p.writer.Close()
}
