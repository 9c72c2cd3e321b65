// Package rabbitmq is the AMQP alternative to the kafka event transport. Topics map
// to durable queues on the default exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/restobooking/internal/kafka"
	"github.com/Domenick1991/restobooking/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("rabbitmq connection closed")

type Publisher struct {
	conn *amqp.Connection

	mu       sync.Mutex
	ch       *amqp.Channel
	declared map[string]bool
	log      *logrus.Entry
}

func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	return &Publisher{
		conn:     conn,
		declared: make(map[string]bool),
		log:      logger.WithComponent("rabbitmq"),
	}, nil
}

// Publish sends value as a persistent JSON message to the queue named topic.
func (p *Publisher) Publish(ctx context.Context, topic, key string, value interface{}) error {
	msg, err := newPublishing(key, value)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(topic)
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", topic, false, false, msg); err != nil {
		p.ch = nil
		p.log.WithError(err).WithField("queue", topic).Error("publish failed")
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	return p.conn.Close()
}

// channel reopens the channel after a failed publish and declares each queue once per channel.
func (p *Publisher) channel(queue string) (*amqp.Channel, error) {
	if p.conn.IsClosed() {
		return nil, ErrClosed
	}
	if p.ch == nil || p.ch.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("open channel: %w", err)
		}
		p.ch = ch
		p.declared = make(map[string]bool)
	}
	if !p.declared[queue] {
		if _, err := p.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare %s: %w", queue, err)
		}
		p.declared[queue] = true
	}
	return p.ch, nil
}

func newPublishing(key string, value interface{}) (amqp.Publishing, error) {
	body, err := json.Marshal(value)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

// Consume reads the durable queue until ctx ends. A handler error rejects the
// message without requeueing it.
func Consume(ctx context.Context, url, queue string, handle func(context.Context, []byte) error) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", queue, err)
	}
	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	log := logger.WithComponent("rabbitmq").WithField("queue", queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return ErrClosed
			}
			if err := handle(ctx, d.Body); err != nil {
				log.WithError(err).Warn("message rejected")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// BookingEvents adapts an event handler to raw queue bodies.
func BookingEvents(handle func(context.Context, kafka.BookingEvent) error) func(context.Context, []byte) error {
	return func(ctx context.Context, body []byte) error {
		var event kafka.BookingEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("decode booking event: %w", err)
		}
		return handle(ctx, event)
	}
}
