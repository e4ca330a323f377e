package notification

import (
	"context"
	"errors"
	"fmt"
	"io"

	"kitchenpos/internal/logger"
	"kitchenpos/internal/messaging"
	"kitchenpos/internal/models"
)

// Consumer delivers message bodies to a handler until ctx is done
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints a notification for each order status update
type Subscriber struct {
	consumer Consumer
	logger   *logger.Logger
	out      io.Writer
}

// NewSubscriber creates a subscriber that writes notifications to out
func NewSubscriber(consumer Consumer, log *logger.Logger, out io.Writer) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      out,
	}
}

// Start consumes until ctx is cancelled, then closes the consumer
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleNotification)

	s.logger.Info("graceful_shutdown", "Stopping notification subscriber", requestID, nil)
	if closeErr := s.consumer.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var update models.StatusUpdateMessage
	if err := messaging.ParseMessage(body, &update); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return err
	}
	if update.OrderID <= 0 {
		return fmt.Errorf("%w: missing order id", messaging.ErrMalformed)
	}
	if _, err := models.ParseOrderStatus(update.NewStatus); err != nil {
		return fmt.Errorf("%w: %v", messaging.ErrMalformed, err)
	}

	if _, err := fmt.Fprintln(s.out, formatNotification(&update)); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed", requestID, map[string]interface{}{
		"order_id":   update.OrderID,
		"old_status": update.OldStatus,
		"new_status": update.NewStatus,
		"changed_by": update.ChangedBy,
	})
	return nil
}

func formatNotification(update *models.StatusUpdateMessage) string {
	timestamp := update.Timestamp.Format("2006-01-02 15:04:05")

	switch models.OrderStatus(update.NewStatus) {
	case models.StatusCooking:
		return fmt.Sprintf("[%s] Order %d for table %d is being cooked.",
			timestamp, update.OrderID, update.OrderTableID)
	case models.StatusMeal:
		return fmt.Sprintf("[%s] Order %d is served to table %d. Enjoy your meal!",
			timestamp, update.OrderID, update.OrderTableID)
	case models.StatusCompletion:
		return fmt.Sprintf("[%s] Order %d for table %d is completed.",
			timestamp, update.OrderID, update.OrderTableID)
	default:
		return fmt.Sprintf("[%s] Order %d status changed from '%s' to '%s' by %s.",
			timestamp, update.OrderID, update.OldStatus, update.NewStatus, update.ChangedBy)
	}
}
