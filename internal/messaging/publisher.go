package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
)

type publishFunc func(ctx context.Context, exchange, routingKey string, msg amqp091.Publishing) error

// Publisher publishes order status updates
type Publisher struct {
	publish publishFunc
	logger  *logger.Logger
	timeout time.Duration
}

// NewPublisher creates a publisher on conn
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return newPublisher(func(ctx context.Context, exchange, routingKey string, msg amqp091.Publishing) error {
		ch, err := conn.Channel()
		if err != nil {
			return err
		}
		return ch.PublishWithContext(ctx, exchange, routingKey, false, false, msg)
	}, log)
}

func newPublisher(publish publishFunc, log *logger.Logger) *Publisher {
	return &Publisher{
		publish: publish,
		logger:  log,
		timeout: 3 * time.Second,
	}
}

// PublishStatusUpdate publishes msg to the status fanout exchange
func (p *Publisher) PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    msg.Timestamp,
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.publish(ctx, StatusExchange, "", publishing); err != nil {
		return fmt.Errorf("failed to publish status update for order %d: %w", msg.OrderID, err)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published status update to exchange %s", StatusExchange),
		"", map[string]interface{}{
			"exchange":     StatusExchange,
			"order_id":     msg.OrderID,
			"new_status":   msg.NewStatus,
			"message_size": len(body),
		})
	return nil
}
