// Package events publishes change-feed notifications to a RabbitMQ topic
// exchange so floor displays and other signed-in clients can refresh without
// polling. The publisher is optional: with no broker configured a no-op
// implementation is used, and publish failures never fail the business write
// that triggered them.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchange = "pos.events"

// Routing keys for the change feed.
const (
	OrderCreated       = "order.created"
	OrderUpdated       = "order.updated"
	OrderCompleted     = "order.completed"
	OrderCancelled     = "order.cancelled"
	OrderDeleted       = "order.deleted"
	TableUpdated       = "table.updated"
	CashSessionOpened  = "cash.session_opened"
	CashSessionClosed  = "cash.session_closed"
	PermissionsUpdated = "permissions.updated"
)

// Envelope is the JSON body of every published event.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload,omitempty"`
}

// Publisher emits change-feed events.
type Publisher interface {
	Publish(routingKey string, payload interface{}) error
	Close() error
}

// --- RabbitMQ implementation ---

type rabbitPublisher struct {
	mu   sync.Mutex
	url  string
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewRabbitPublisher connects to the broker at url and declares the topic
// exchange.
func NewRabbitPublisher(url string) (Publisher, error) {
	p := &rabbitPublisher{url: url}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *rabbitPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dialing rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("opening channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declaring exchange %q: %w", exchange, err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *rabbitPublisher) Publish(routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(); err != nil {
			return fmt.Errorf("reconnecting before publish: %w", err)
		}
	}

	body, err := json.Marshal(Envelope{
		Type:       routingKey,
		OccurredAt: time.Now(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("marshaling event %q: %w", routingKey, err)
	}

	err = p.ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing event %q: %w", routingKey, err)
	}
	return nil
}

func (p *rabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// --- No-op implementation ---

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event. Used when no
// broker is configured and in tests.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(string, interface{}) error { return nil }
func (nopPublisher) Close() error                      { return nil }
