package queue

import (
	"context"
	"encoding/json"
	"time"

	"journey-booking/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher pushes booking lifecycle events to RabbitMQ. Publishing is
// best-effort: failures are logged and returned but never interrupt the
// booking flow. A Publisher built without a broker URL is a no-op.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *zap.Logger
}

func NewPublisher(config utils.QueueConfig, log *zap.Logger) *Publisher {
	p := &Publisher{log: log.With(zap.String("service", "queue_publisher"))}

	if config.URL == "" {
		p.log.Info("No broker URL configured, events disabled")
		return p
	}

	conn, err := amqp.Dial(config.URL)
	if err != nil {
		p.log.Warn("Broker dial failed, events disabled", zap.Error(err))
		return p
	}

	channel, err := conn.Channel()
	if err != nil {
		p.log.Warn("Broker channel open failed, events disabled", zap.Error(err))
		_ = conn.Close()
		return p
	}

	// Durable queues so messages survive broker restarts
	for _, name := range []string{QueueBookingCreated, QueueBookingCancelled} {
		if _, err := channel.QueueDeclare(name, true, false, false, false, nil); err != nil {
			p.log.Warn("Queue declare failed, events disabled",
				zap.String("queue", name),
				zap.Error(err),
			)
			_ = channel.Close()
			_ = conn.Close()
			return p
		}
	}

	p.conn = conn
	p.channel = channel
	p.log.Info("Event publisher connected")
	return p
}

func (p *Publisher) PublishBookingCreated(ctx context.Context, event BookingCreatedEvent) error {
	return p.publish(ctx, QueueBookingCreated, event)
}

func (p *Publisher) PublishBookingCancelled(ctx context.Context, event BookingCancelledEvent) error {
	return p.publish(ctx, QueueBookingCancelled, event)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event any) error {
	if p.channel == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to marshal event", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	// Default exchange, routing key = queue name
	if err := p.channel.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Error("Failed to publish event", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
