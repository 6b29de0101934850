package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const (
	minBackoff    = time.Second
	maxBackoff    = 30 * time.Second
	prefetchCount = 20
)

// Consumer читает письма из очереди и передаёт их Handler
type Consumer struct {
	url     string
	queue   string
	handler Handler
	log     Logger
}

// NewConsumer создает потребителя очереди queueName
func NewConsumer(url, queueName string, handler Handler, log Logger) *Consumer {
	return &Consumer{url: url, queue: queueName, handler: handler, log: log}
}

// Run переподключается к брокеру с экспоненциальной задержкой до отмены ctx
func (c *Consumer) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("queue consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = minBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("queue consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		c.log.Warn("queue consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info("queue consumer: listening on %s", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.process(ctx, d)
		}
	}
}

// process подтверждает успешно отправленное письмо
// Ошибка отправки или разбора отклоняет сообщение без повторной постановки
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	msg, err := decode(d.Body)
	if err != nil {
		c.log.Error("queue consumer: %v", err)
		_ = d.Nack(false, false)
		return
	}

	if err := c.handler.Send(ctx, msg); err != nil {
		c.log.Error("queue consumer: message %s not delivered: %v", msg.Key, err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func decode(body []byte) (*domain.EmailMessage, error) {
	var msg domain.EmailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if msg.To == "" {
		return nil, fmt.Errorf("%w: empty recipient", ErrDecode)
	}
	return &msg, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
