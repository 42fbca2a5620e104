package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tailor_shop/pkg/workflow"
)

const (
	StageUpdated = "job.stage.updated"
	JobCreated   = "job.created"
	BillCreated  = "bill.created"
	JobDelivered = "job.delivered"
)

// StageEvent is published whenever a workflow stage changes.
type StageEvent struct {
	JobID        uint            `json:"job_id"`
	BillID       *uint           `json:"bill_id,omitempty"`
	Stage        workflow.Stage  `json:"stage"`
	Status       workflow.Status `json:"status"`
	CurrentStage workflow.Stage  `json:"current_stage"`
	Progress     float64         `json:"progress_percentage"`
	JobStatus    string          `json:"job_status"`
	At           time.Time       `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close()
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial connects to the broker and declares the topic exchange.
func Dial(url, exchange string) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
}

func (p *amqpPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

type noopPublisher struct{}

// Noop drops every event. Used when no broker is configured.
func Noop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, string, any) error { return nil }
func (noopPublisher) Close()                                     {}
