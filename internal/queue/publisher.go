package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher sends video events to RabbitMQ. Each call dials the broker,
// so a broker outage only affects the events published during it.
type Publisher struct {
	url string
	log zerolog.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{url: url, log: log.With().Str("component", "publisher").Logger()}
}

// Publish marshals ev and publishes it as a persistent message. Errors are
// logged and returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev VideoEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(ModerationQueue, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ModerationQueue, false, false, pub); err != nil {
		p.log.Warn().Err(err).Str("type", ev.Type).Msg("rabbitmq publish failed")
		return err
	}
	return nil
}

// Noop discards events. It is used in tests and when no broker is
// configured.
type Noop struct{}

func (Noop) Publish(context.Context, VideoEvent) error { return nil }
