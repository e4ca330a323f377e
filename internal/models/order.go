package models

import (
	"fmt"
	"time"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusCooking    OrderStatus = "COOKING"
	StatusMeal       OrderStatus = "MEAL"
	StatusCompletion OrderStatus = "COMPLETION"
)

// ParseOrderStatus converts a raw value into one of the known statuses
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, raw)
	}
	return status, nil
}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusCooking, StatusMeal, StatusCompletion:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition is allowed out of the status
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompletion
}

// MarshalText refuses to encode values outside the enumeration
func (s OrderStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderStatus, string(s))
	}
	return []byte(s), nil
}

func (s *OrderStatus) UnmarshalText(text []byte) error {
	status, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// OrderLineItem represents one (menu, quantity) entry of an order
type OrderLineItem struct {
	Seq      int64 `json:"seq"`
	OrderID  int64 `json:"orderId"`
	MenuID   int64 `json:"menuId"`
	Quantity int64 `json:"quantity"`
}

// Order represents an order placed from a table
type Order struct {
	ID             int64           `json:"id"`
	OrderTableID   int64           `json:"orderTableId"`
	OrderStatus    OrderStatus     `json:"orderStatus"`
	OrderedTime    time.Time       `json:"orderedTime"`
	OrderLineItems []OrderLineItem `json:"orderLineItems"`
}

// LineItemError reports which line item broke an order rule. Index is -1 when
// the rule concerns the line items as a whole.
type LineItemError struct {
	Index   int
	Field   string
	Message string
}

func (e *LineItemError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: orderLineItems: %s", ErrInvalidOrder, e.Message)
	}
	return fmt.Sprintf("%s: orderLineItems[%d].%s: %s", ErrInvalidOrder, e.Index, e.Field, e.Message)
}

func (e *LineItemError) Unwrap() error {
	return ErrInvalidOrder
}

// NewOrder builds an unsaved order in the initial COOKING status
func NewOrder(orderTableID int64, lineItems []OrderLineItem, orderedTime time.Time) (*Order, error) {
	if len(lineItems) == 0 {
		return nil, &LineItemError{Index: -1, Message: "at least one order line item is required"}
	}
	for i, item := range lineItems {
		if item.MenuID <= 0 {
			return nil, &LineItemError{Index: i, Field: "menuId", Message: "menu id is required"}
		}
		if item.Quantity <= 0 {
			return nil, &LineItemError{Index: i, Field: "quantity", Message: "quantity must be greater than 0"}
		}
	}

	items := make([]OrderLineItem, len(lineItems))
	copy(items, lineItems)

	return &Order{
		OrderTableID:   orderTableID,
		OrderStatus:    StatusCooking,
		OrderedTime:    orderedTime,
		OrderLineItems: items,
	}, nil
}

// MenuIDs returns the distinct menu ids referenced by the line items, in order of first appearance
func (o *Order) MenuIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.OrderLineItems))
	ids := make([]int64, 0, len(o.OrderLineItems))
	for _, item := range o.OrderLineItems {
		if _, ok := seen[item.MenuID]; ok {
			continue
		}
		seen[item.MenuID] = struct{}{}
		ids = append(ids, item.MenuID)
	}
	return ids
}

// ChangeStatus moves the order to next. COMPLETION is terminal; apart from
// that any of MEAL or COMPLETION is accepted regardless of the current status.
func (o *Order) ChangeStatus(next OrderStatus) error {
	switch next {
	case StatusMeal, StatusCompletion:
	case StatusCooking:
		return fmt.Errorf("%w: %s can only be set on creation", ErrInvalidOrderStatus, next)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrderStatus, string(next))
	}

	if !o.OrderStatus.IsValid() {
		return fmt.Errorf("%w: stored status %q", ErrInvalidOrderStatus, string(o.OrderStatus))
	}
	if o.OrderStatus.IsTerminal() {
		return fmt.Errorf("%w: order %d", ErrOrderAlreadyCompleted, o.ID)
	}

	o.OrderStatus = next
	return nil
}

// Clone returns a deep copy of the order
func (o *Order) Clone() *Order {
	c := *o
	c.OrderLineItems = make([]OrderLineItem, len(o.OrderLineItems))
	copy(c.OrderLineItems, o.OrderLineItems)
	return &c
}

// OrderStatusHistory represents an entry in the order status log
type OrderStatusHistory struct {
	Status    OrderStatus `json:"status"`
	ChangedBy string      `json:"changedBy"`
	ChangedAt time.Time   `json:"timestamp"`
	Notes     *string     `json:"notes,omitempty"`
}

// OrderLineItemRequest is one line of a create order request
type OrderLineItemRequest struct {
	MenuID   int64 `json:"menuId"`
	Quantity int64 `json:"quantity"`
}

// CreateOrderRequest represents the request to create a new order
type CreateOrderRequest struct {
	OrderTableID   int64                  `json:"orderTableId"`
	OrderLineItems []OrderLineItemRequest `json:"orderLineItems"`
}

// LineItems converts the request lines into unsaved line items
func (r *CreateOrderRequest) LineItems() []OrderLineItem {
	items := make([]OrderLineItem, 0, len(r.OrderLineItems))
	for _, line := range r.OrderLineItems {
		items = append(items, OrderLineItem{MenuID: line.MenuID, Quantity: line.Quantity})
	}
	return items
}

// ChangeOrderStatusRequest represents the body of a status change
type ChangeOrderStatusRequest struct {
	OrderStatus string `json:"orderStatus"`
}
