package order

import (
	"context"
	"fmt"
	"time"

	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
	"kitchenpos/internal/validation"
)

// Repository persists orders and their status history
type Repository interface {
	CreateOrder(ctx context.Context, order *models.Order, changedBy string) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id int64, changedBy string, fn func(*models.Order) error) (*models.Order, error)
	OrderHistory(ctx context.Context, id int64) ([]models.OrderStatusHistory, error)
}

// MenuCatalog counts how many of the given menu ids exist
type MenuCatalog interface {
	CountMenus(ctx context.Context, ids []int64) (int, error)
}

// EventPublisher announces committed order changes
type EventPublisher interface {
	PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error
}

type nopPublisher struct{}

func (nopPublisher) PublishStatusUpdate(context.Context, *models.StatusUpdateMessage) error { return nil }

// Service implements the order lifecycle
type Service struct {
	orders    Repository
	menus     MenuCatalog
	publisher EventPublisher
	logger    *logger.Logger
	now       func() time.Time
	changedBy string
}

// NewService creates an order service. A nil publisher disables status events.
func NewService(orders Repository, menus MenuCatalog, publisher EventPublisher, log *logger.Logger) *Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Service{
		orders:    orders,
		menus:     menus,
		publisher: publisher,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
		changedBy: "api-server",
	}
}

// CreateOrder validates the request and stores a new order in COOKING.
// Checks run in a fixed order: line items, menus, then the table. The table
// is checked by the repository inside the write so it cannot be emptied
// between the check and the insert.
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, requestID string) (*models.Order, error) {
	order, err := models.NewOrder(req.OrderTableID, req.LineItems(), s.now())
	if err != nil {
		return nil, validation.OrderFieldError(err)
	}

	menuIDs := order.MenuIDs()
	found, err := s.menus.CountMenus(ctx, menuIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count menus: %w", err)
	}
	if found != len(menuIDs) {
		return nil, fmt.Errorf("%w: %d of %d menus exist", models.ErrMenuNotFound, found, len(menuIDs))
	}

	if err := s.orders.CreateOrder(ctx, order, s.changedBy); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("order_created", "Order created", requestID, map[string]interface{}{
		"order_id":       order.ID,
		"order_table_id": order.OrderTableID,
		"line_items":     len(order.OrderLineItems),
	})

	s.publish(ctx, models.CreateStatusUpdateMessage(order, "", s.changedBy), requestID)
	return order, nil
}

// ChangeOrderStatus moves an order to MEAL or COMPLETION
func (s *Service) ChangeOrderStatus(ctx context.Context, orderID int64, req *models.ChangeOrderStatusRequest, requestID string) (*models.Order, error) {
	next, err := validation.ValidateChangeOrderStatusRequest(req)
	if err != nil {
		return nil, err
	}
	if next == models.StatusCooking {
		return nil, fmt.Errorf("%w: cannot change an order back to %s", models.ErrInvalidOrderStatus, next)
	}

	var previous models.OrderStatus
	order, err := s.orders.UpdateOrder(ctx, orderID, s.changedBy, func(o *models.Order) error {
		previous = o.OrderStatus
		return o.ChangeStatus(next)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_status_changed", fmt.Sprintf("Order %d changed from %s to %s", order.ID, previous, order.OrderStatus), requestID, map[string]interface{}{
		"order_id":   order.ID,
		"old_status": previous.String(),
		"new_status": order.OrderStatus.String(),
	})

	s.publish(ctx, models.CreateStatusUpdateMessage(order, previous, s.changedBy), requestID)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.orders.GetOrder(ctx, orderID)
}

func (s *Service) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListOrders(ctx)
}

// OrderHistory returns the status changes of an order, oldest first
func (s *Service) OrderHistory(ctx context.Context, orderID int64) ([]models.OrderStatusHistory, error) {
	return s.orders.OrderHistory(ctx, orderID)
}

// publish runs after the change is committed, so failures are only logged
func (s *Service) publish(ctx context.Context, msg *models.StatusUpdateMessage, requestID string) {
	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish status update", requestID, err, map[string]interface{}{
			"order_id":   msg.OrderID,
			"new_status": msg.NewStatus,
		})
	}
}
