// Package queue carries usage events over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

const (
	ExchangeName           = "tubenotes.usage"
	UsageQueueName         = "usage_events"
	DeadLetterExchangeName = "tubenotes.usage.dlx"
	DeadLetterQueueName    = "usage_events_dlq"
	MaxRetries             = 5

	retryHeader = "x-retry-count"
)

// Handler processes one usage event. Returning an error schedules a retry.
type Handler func(ctx context.Context, evt *models.UsageEvent) error

// channel is the subset of *amqp.Channel the queue uses
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	QueueInspect(name string) (amqp.Queue, error)
	Close() error
}

// Queue publishes and consumes usage events
type Queue struct {
	conn    *amqp.Connection
	channel channel
	logger  *logging.Logger
}

// URL builds the broker address from cfg
func URL(cfg config.QueueConfig) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Vhost)
}

// New connects to RabbitMQ and declares the usage topology
func New(cfg config.QueueConfig, logger *logging.Logger) (*Queue, error) {
	conn, err := amqp.Dial(URL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Queue{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

// declareTopology sets up a topic exchange routed by event type and a
// dead letter queue for events that cannot be processed.
func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DeadLetterExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(DeadLetterQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := ch.QueueBind(DeadLetterQueueName, "", DeadLetterExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	args := amqp.Table{
		"x-dead-letter-exchange": DeadLetterExchangeName,
	}
	if _, err := ch.QueueDeclare(UsageQueueName, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(UsageQueueName, "#", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// Close closes the queue connection
func (q *Queue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

// Publish sends evt routed by its type
func (q *Queue) Publish(ctx context.Context, evt *models.UsageEvent) error {
	return q.publish(ctx, evt, 0)
}

func (q *Queue) publish(ctx context.Context, evt *models.UsageEvent, retries int) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
		Type:         evt.Type,
	}
	if retries > 0 {
		msg.Headers = amqp.Table{retryHeader: int32(retries)}
	}

	if err := q.channel.PublishWithContext(ctx, ExchangeName, evt.Type, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if retries == 0 {
		metrics.RecordUsageEvent(evt.Type, "published")
	}
	return nil
}

// Consume delivers events to handler until ctx is done or the channel closes
func (q *Queue) Consume(ctx context.Context, handler Handler) error {
	if err := q.channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := q.channel.Consume(UsageQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			q.handle(ctx, msg, handler)
		}
	}
}

func (q *Queue) handle(ctx context.Context, msg amqp.Delivery, handler Handler) {
	var evt models.UsageEvent
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		q.logger.ErrorWithErr("Dropping malformed usage event", err)
		metrics.RecordError("queue", "decode")
		msg.Nack(false, false)
		return
	}

	err := handler(ctx, &evt)
	if err == nil {
		metrics.RecordUsageEvent(evt.Type, "consumed")
		msg.Ack(false)
		return
	}

	retries := retryCount(msg.Headers) + 1
	l := q.logger.WithField("event", evt.Type).WithField("retry", retries)
	if retries >= MaxRetries {
		l.ErrorWithErr("Usage event exhausted retries, dead-lettering", err)
		metrics.RecordUsageEvent(evt.Type, "dead_lettered")
		msg.Nack(false, false)
		return
	}

	l.WithError(err).Warn("Usage event handler failed, retrying")
	if pubErr := q.publish(ctx, &evt, retries); pubErr != nil {
		l.ErrorWithErr("Failed to republish usage event", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}

func retryCount(headers amqp.Table) int {
	switch v := headers[retryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// Depth returns the number of events waiting in the usage queue
func (q *Queue) Depth() (int, error) {
	return q.depth(UsageQueueName)
}

// DLQDepth returns the number of events in the dead letter queue
func (q *Queue) DLQDepth() (int, error) {
	return q.depth(DeadLetterQueueName)
}

func (q *Queue) depth(name string) (int, error) {
	info, err := q.channel.QueueInspect(name)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect queue: %w", err)
	}
	return info.Messages, nil
}
