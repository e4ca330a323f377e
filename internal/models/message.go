package models

import "time"

// StatusUpdateMessage represents an order status change published to subscribers
type StatusUpdateMessage struct {
	OrderID      int64     `json:"order_id"`
	OrderTableID int64     `json:"order_table_id"`
	OldStatus    string    `json:"old_status,omitempty"`
	NewStatus    string    `json:"new_status"`
	ChangedBy    string    `json:"changed_by"`
	Timestamp    time.Time `json:"timestamp"`
}

// CreateStatusUpdateMessage creates a StatusUpdateMessage for a committed order change.
// oldStatus is empty for a freshly created order.
func CreateStatusUpdateMessage(order *Order, oldStatus OrderStatus, changedBy string) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		OrderID:      order.ID,
		OrderTableID: order.OrderTableID,
		OldStatus:    string(oldStatus),
		NewStatus:    string(order.OrderStatus),
		ChangedBy:    changedBy,
		Timestamp:    time.Now().UTC(),
	}
}
