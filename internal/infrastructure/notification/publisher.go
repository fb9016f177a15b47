package notification

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tradepost/internal/infrastructure/metrics"
	"tradepost/pkg/logger"
)

// Routing keys for the events the core emits.
const (
	RoutingKeyTransactionCreated   = "transaction.created"
	RoutingKeyTransactionCompleted = "transaction.completed"
	RoutingKeyTransactionCancelled = "transaction.cancelled"
	RoutingKeyPaymentApproved      = "payment.approved"
	RoutingKeyChatMessage          = "chat.message"
)

// Event is the envelope published to the notification exchange.
type Event struct {
	Type          string                 `json:"type"`
	RecipientID   string                 `json:"recipient_id,omitempty"`
	ProductID     string                 `json:"product_id,omitempty"`
	TransactionID string                 `json:"transaction_id,omitempty"`
	RoomID        string                 `json:"room_id,omitempty"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

// Publisher is a fire-and-forget notification sink. Failures are logged
// and never propagated to the triggering operation.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event Event)
	Close() error
}

// NewPublisher builds a RabbitMQ publisher or a noop publisher when AMQP
// is disabled or unreachable.
func NewPublisher(amqpURL, exchange string) Publisher {
	if amqpURL == "" {
		logger.Warn("notifications disabled, using noop: empty amqp url")
		return noopPublisher{}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		logger.Warn("notifications disabled, using noop: %v", err)
		return noopPublisher{}
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Warn("notifications disabled, using noop: %v", err)
		_ = conn.Close()
		return noopPublisher{}
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		logger.Warn("notifications disabled, using noop: %v", err)
		_ = ch.Close()
		_ = conn.Close()
		return noopPublisher{}
	}

	logger.Info("notifications connected exchange=%s", exchange)
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("notification marshal failed: %v", err)
		metrics.IncNotifyPublishError()
		return
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		logger.Error("notification publish failed: routing_key=%s err=%v", routingKey, err)
		metrics.IncNotifyPublishError()
	}
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, routingKey string, event Event) {
	logger.Debug("notification noop publish routing_key=%s type=%s", routingKey, event.Type)
}

func (noopPublisher) Close() error {
	return nil
}
