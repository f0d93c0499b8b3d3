package sink

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/senzing-garage/stream-producer/internal/config"
)

// RabbitMQPublisher opens one blocking AMQP connection per worker —
// sink clients are never shared across workers, per spec §5 — declares
// (or verifies) its exchange and queue, and publishes with a persistent
// delivery mode.
type RabbitMQPublisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

// NewRabbitMQPublisher dials the broker and declares its topology. A
// declaration failure reported with AMQP reply code 404 means the
// named entities do not exist (fatal: "entities missing"); 406 means
// they exist with incompatible arguments (fatal: "entities
// misconfigured"); any other dial/channel failure is reported as
// "broker unreachable". All three are fatal per spec §7 and are
// returned to the caller to exit the process with a non-zero status.
func NewRabbitMQPublisher(cfg *config.Snapshot) (*RabbitMQPublisher, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.RabbitMQUsername, cfg.RabbitMQPassword, cfg.RabbitMQHost, cfg.RabbitMQPort)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("broker unreachable: dial %s:%d: %w", cfg.RabbitMQHost, cfg.RabbitMQPort, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("broker unreachable: open channel: %w", err)
	}

	p := &RabbitMQPublisher{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.RabbitMQExchange,
		routingKey: cfg.RabbitMQRoutingKey,
	}

	if cfg.RabbitMQUseExistingEntities {
		if err := ch.ExchangeDeclarePassive(cfg.RabbitMQExchange, "direct", true, false, false, false, nil); err != nil {
			p.Close()
			return nil, classifyDeclareError(err)
		}
		if _, err := ch.QueueDeclarePassive(cfg.RabbitMQQueue, true, false, false, false, nil); err != nil {
			p.Close()
			return nil, classifyDeclareError(err)
		}
	} else {
		if err := ch.ExchangeDeclare(cfg.RabbitMQExchange, "direct", true, false, false, false, nil); err != nil {
			p.Close()
			return nil, classifyDeclareError(err)
		}
		if _, err := ch.QueueDeclare(cfg.RabbitMQQueue, true, false, false, false, nil); err != nil {
			p.Close()
			return nil, classifyDeclareError(err)
		}
		if err := ch.QueueBind(cfg.RabbitMQQueue, cfg.RabbitMQRoutingKey, cfg.RabbitMQExchange, false, nil); err != nil {
			p.Close()
			return nil, classifyDeclareError(err)
		}
	}

	return p, nil
}

// classifyDeclareError maps an AMQP channel/connection exception to the
// fatal-reason taxonomy spec §4.3 names.
func classifyDeclareError(err error) error {
	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		switch amqpErr.Code {
		case amqp.NotFound:
			return fmt.Errorf("entities missing: %w", err)
		case amqp.PreconditionFailed:
			return fmt.Errorf("entities misconfigured: %w", err)
		}
	}
	return fmt.Errorf("broker unreachable: %w", err)
}

// Publish sends payload with a persistent delivery mode. A single
// publish exception is a recoverable publish error per spec §7 — it is
// returned to the caller, which logs a warning and drops the message.
func (p *RabbitMQPublisher) Publish(ctx context.Context, payload []byte) error {
	err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *RabbitMQPublisher) Close() error {
	var firstErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
