package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Envelope is the message body every subscriber receives.
type Envelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sentAt"`
}

// Notifier implements ports.Notifier. Messages are transient: a push that finds
// nobody listening is dropped.
type Notifier struct {
	ch       publisher
	exchange string
	now      func() time.Time
}

func NewNotifier(client *Client, exchange string) *Notifier {
	return newNotifier(client.Channel(), exchange)
}

func newNotifier(ch publisher, exchange string) *Notifier {
	return &Notifier{ch: ch, exchange: exchange, now: time.Now}
}

func (n *Notifier) Publish(ctx context.Context, channel string, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}

	body, err := json.Marshal(Envelope{
		Channel: channel,
		Event:   event,
		Payload: data,
		SentAt:  n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", event, err)
	}

	err = n.ch.PublishWithContext(ctx, n.exchange, channel, false, false, amqp.Publishing{
		DeliveryMode: amqp.Transient,
		ContentType:  "application/json",
		Type:         event,
		Timestamp:    n.now().UTC(),
		Headers:      amqp.Table{"event": event},
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", event, channel, err)
	}
	return nil
}
