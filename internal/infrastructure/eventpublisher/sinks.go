package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nomadhomes/bookingledger/internal/domain"
)

// message is the wire form shared by every sink.
type message struct {
	ID            string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Payload       map[string]any `json:"payload"`
}

func encode(event *domain.OutboxEvent) ([]byte, error) {
	body, err := json.Marshal(message{
		ID:            event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		OccurredAt:    event.CreatedAt.UTC(),
		Payload:       event.Payload,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "encode event %s", event.ID)
	}
	return body, nil
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}

// RedisStreamPublisher appends events to a Redis stream.
type RedisStreamPublisher struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

// NewRedisStreamPublisher creates a publisher writing to stream. The stream
// is trimmed to roughly maxLen entries when maxLen is positive.
func NewRedisStreamPublisher(client redis.UniversalClient, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Publish adds the event as one stream entry.
func (p *RedisStreamPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":   event.ID,
			"event_type": event.EventType,
			"body":       body,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return errors.Wrapf(err, "xadd %s", p.stream)
	}
	return nil
}

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends events to a topic exchange, routed by event type.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
}

// NewAMQPPublisher dials url and declares a durable topic exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrapf(err, "failed to declare exchange %s", exchange)
	}

	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends one persistent message keyed by the event type.
func (p *AMQPPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, event.EventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.CreatedAt,
		Type:         event.EventType,
		Body:         body,
	})
	if err != nil {
		return errors.Wrapf(err, "publish %s to %s", event.ID, p.exchange)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	chErr := p.channel.Close()
	if p.conn == nil {
		return chErr
	}
	return errors.CombineErrors(chErr, p.conn.Close())
}
