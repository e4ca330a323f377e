package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    OrderStatus
		wantErr bool
	}{
		{raw: "COOKING", want: StatusCooking},
		{raw: "MEAL", want: StatusMeal},
		{raw: "COMPLETION", want: StatusCompletion},
		{raw: "cooking", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "CANCELLED", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseOrderStatus(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrderStatus(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidOrderStatus) {
				t.Errorf("expected ErrInvalidOrderStatus, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseOrderStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestOrderStatusJSON(t *testing.T) {
	var order Order
	if err := json.Unmarshal([]byte(`{"orderStatus":"SERVED"}`), &order); err == nil {
		t.Fatalf("expected unknown status to be rejected")
	}

	if err := json.Unmarshal([]byte(`{"orderStatus":"MEAL"}`), &order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderStatus != StatusMeal {
		t.Errorf("expected MEAL, got %s", order.OrderStatus)
	}

	if _, err := json.Marshal(Order{OrderStatus: "SERVED"}); err == nil {
		t.Errorf("expected marshalling an unknown status to fail")
	}
}

func TestNewOrder(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		items     []OrderLineItem
		wantErr   error
		wantIndex int
		wantField string
	}{
		{
			name:  "valid order",
			items: []OrderLineItem{{MenuID: 1, Quantity: 1}, {MenuID: 2, Quantity: 4}},
		},
		{
			name:      "no line items",
			items:     nil,
			wantErr:   ErrInvalidOrder,
			wantIndex: -1,
		},
		{
			name:      "zero quantity",
			items:     []OrderLineItem{{MenuID: 1, Quantity: 0}},
			wantErr:   ErrInvalidOrder,
			wantIndex: 0,
			wantField: "quantity",
		},
		{
			name:      "missing menu",
			items:     []OrderLineItem{{MenuID: 1, Quantity: 1}, {Quantity: 2}},
			wantErr:   ErrInvalidOrder,
			wantIndex: 1,
			wantField: "menuId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewOrder(7, tt.items, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewOrder() error = %v, want %v", err, tt.wantErr)
				}
				var lineErr *LineItemError
				if !errors.As(err, &lineErr) {
					t.Fatalf("NewOrder() error = %v, want *LineItemError", err)
				}
				if lineErr.Index != tt.wantIndex || lineErr.Field != tt.wantField {
					t.Errorf("LineItemError = %+v, want index %d field %q", lineErr, tt.wantIndex, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewOrder() unexpected error: %v", err)
			}
			if order.OrderStatus != StatusCooking {
				t.Errorf("expected COOKING, got %s", order.OrderStatus)
			}
			if order.OrderTableID != 7 {
				t.Errorf("expected table 7, got %d", order.OrderTableID)
			}
			if !order.OrderedTime.Equal(now) {
				t.Errorf("expected ordered time %v, got %v", now, order.OrderedTime)
			}
			if len(order.OrderLineItems) != len(tt.items) {
				t.Errorf("expected %d line items, got %d", len(tt.items), len(order.OrderLineItems))
			}
		})
	}
}

func TestOrderMenuIDsDeduplicates(t *testing.T) {
	order := &Order{OrderLineItems: []OrderLineItem{
		{MenuID: 3, Quantity: 1},
		{MenuID: 1, Quantity: 1},
		{MenuID: 3, Quantity: 2},
	}}

	ids := order.MenuIDs()
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Errorf("unexpected menu ids: %v", ids)
	}
}

func TestOrderChangeStatus(t *testing.T) {
	tests := []struct {
		name    string
		current OrderStatus
		next    OrderStatus
		wantErr error
	}{
		{name: "cooking to meal", current: StatusCooking, next: StatusMeal},
		{name: "meal to completion", current: StatusMeal, next: StatusCompletion},
		// Only leaving COMPLETION is guarded; skipping MEAL is accepted.
		{name: "cooking to completion is lenient", current: StatusCooking, next: StatusCompletion},
		{name: "meal to meal is lenient", current: StatusMeal, next: StatusMeal},
		{name: "completion is terminal", current: StatusCompletion, next: StatusMeal, wantErr: ErrOrderAlreadyCompleted},
		{name: "completion to completion", current: StatusCompletion, next: StatusCompletion, wantErr: ErrOrderAlreadyCompleted},
		{name: "cooking is not a target", current: StatusMeal, next: StatusCooking, wantErr: ErrInvalidOrderStatus},
		{name: "unknown target", current: StatusCooking, next: "SERVED", wantErr: ErrInvalidOrderStatus},
		{name: "unknown stored status", current: "SERVED", next: StatusMeal, wantErr: ErrInvalidOrderStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{ID: 1, OrderStatus: tt.current}
			err := order.ChangeStatus(tt.next)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ChangeStatus() error = %v, want %v", err, tt.wantErr)
				}
				if order.OrderStatus != tt.current {
					t.Errorf("status changed on failure: %s", order.OrderStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("ChangeStatus() unexpected error: %v", err)
			}
			if order.OrderStatus != tt.next {
				t.Errorf("expected %s, got %s", tt.next, order.OrderStatus)
			}
		})
	}
}

func TestTableCreateRequestDefaultsToEmpty(t *testing.T) {
	var req TableCreateRequest
	if err := json.Unmarshal([]byte(`{"numberOfGuests":0}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !req.IsEmpty() {
		t.Errorf("expected a table without explicit empty flag to be empty")
	}

	if err := json.Unmarshal([]byte(`{"numberOfGuests":4,"empty":false}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.IsEmpty() {
		t.Errorf("expected explicit empty=false to be kept")
	}
}
