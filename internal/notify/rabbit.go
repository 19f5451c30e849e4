package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/Danielrabaneda/Salas/internal/game"
)

const (
	DefaultExchange = "ows.events"
	exchangeType    = "topic"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes every event as JSON to a topic exchange with
// routing key story.<type>.
type RabbitPublisher struct {
	ch       Channel
	exchange string
	timeout  time.Duration
	logger   zerolog.Logger
}

func NewRabbitPublisher(ch Channel, exchange string, timeout time.Duration, logger zerolog.Logger) (*RabbitPublisher, error) {
	if ch == nil {
		return nil, fmt.Errorf("rabbitmq channel is nil")
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	if err := ch.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}
	logger = logger.With().Str("component", "rabbit").Str("exchange", exchange).Logger()
	logger.Info().Msg("event exchange declared")
	return &RabbitPublisher{ch: ch, exchange: exchange, timeout: timeout, logger: logger}, nil
}

// Dial opens a connection and channel for a publisher. The returned close
// function releases both.
func Dial(url string) (Channel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return ch, func() error {
		_ = ch.Close()
		return conn.Close()
	}, nil
}

func RoutingKey(t game.EventType) string { return "story." + string(t) }

func (p *RabbitPublisher) Notify(ctx context.Context, ev game.Event) {
	if err := p.Publish(ctx, ev); err != nil {
		p.logger.Error().Err(err).Str("storyId", ev.StoryID).Str("type", string(ev.Type)).Msg("publish failed")
	}
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev game.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	// the caller's request may already be done; delivery has its own deadline
	ctx = context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(ev.Type), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
		MessageId:   ev.StoryID,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}
	p.logger.Debug().Str("storyId", ev.StoryID).Str("type", string(ev.Type)).Msg("event published")
	return nil
}

func (p *RabbitPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
