package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"event-ticketing/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// declareTopology creates the topic exchange and the durable work queue
// bound to every job type.
func declareTopology(ch *amqp.Channel, cfg utils.RabbitConfig) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}
	if err := ch.QueueBind(cfg.Queue, "#", cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", cfg.Queue, err)
	}
	return nil
}

type RabbitPublisher struct {
	mu       sync.Mutex // amqp channels are not safe for concurrent publish
	ch       *amqp.Channel
	exchange string
	log      *zap.Logger
}

func NewRabbitPublisher(conn *amqp.Connection, cfg utils.RabbitConfig, log *zap.Logger) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareTopology(ch, cfg); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &RabbitPublisher{
		ch:       ch,
		exchange: cfg.Exchange,
		log:      log.With(zap.String("component", "queue.rabbit")),
	}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, string(job.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    job.EnqueuedAt,
		Type:         string(job.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", job.Type, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

// Consumer feeds deliveries from the work queue to a Handler.
type Consumer struct {
	ch      *amqp.Channel
	queue   string
	handler Handler
	log     *zap.Logger
}

func NewConsumer(conn *amqp.Connection, cfg utils.RabbitConfig, handler Handler, log *zap.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareTopology(ch, cfg); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &Consumer{
		ch:      ch,
		queue:   cfg.Queue,
		handler: handler,
		log:     log.With(zap.String("component", "queue.consumer")),
	}, nil
}

// Run consumes until ctx is done or the channel closes. Failed and malformed
// jobs are dropped without requeue.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.log.Info("Consumer started", zap.String("queue", c.queue))
	defer c.ch.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.log.Warn("Dropping malformed job", zap.Error(err), zap.String("message_id", d.MessageId))
		_ = d.Nack(false, false)
		return
	}

	if err := process(ctx, c.handler, job, c.log); err != nil {
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
