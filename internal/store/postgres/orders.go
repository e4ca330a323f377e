package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kitchenpos/internal/database"
	"kitchenpos/internal/models"
)

// queryRower is satisfied by both the pool wrapper and a transaction
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// CreateOrder inserts the order, its line items and the initial status log entry in one transaction.
// The order table row is share-locked so it cannot be emptied before the order commits.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, changedBy string) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var empty bool
		err := tx.QueryRow(ctx, database.GetOrderTableForShareSQL, order.OrderTableID).Scan(&empty)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %d", models.ErrTableNotFound, order.OrderTableID)
			}
			return fmt.Errorf("failed to lock order table: %w", err)
		}
		if empty {
			return fmt.Errorf("%w: %d", models.ErrTableEmpty, order.OrderTableID)
		}

		err = tx.QueryRow(ctx, database.InsertOrderSQL,
			order.OrderTableID, order.OrderStatus.String(), order.OrderedTime,
		).Scan(&order.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for i := range order.OrderLineItems {
			item := &order.OrderLineItems[i]
			item.OrderID = order.ID
			if err := tx.QueryRow(ctx, database.InsertOrderLineItemSQL, item.OrderID, item.MenuID, item.Quantity).Scan(&item.Seq); err != nil {
				return fmt.Errorf("failed to insert order line item for menu %d: %w", item.MenuID, err)
			}
		}

		if _, err := tx.Exec(ctx, database.InsertOrderStatusLogSQL, order.ID, order.OrderStatus.String(), changedBy, "order created"); err != nil {
			return fmt.Errorf("failed to insert order status log: %w", err)
		}
		return nil
	})
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return loadOrder(ctx, s.db, database.GetOrderSQL, id)
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, database.ListOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	index := make(map[int64]int)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		order.OrderLineItems = []models.OrderLineItem{}
		index[order.ID] = len(orders)
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	itemRows, err := s.db.Query(ctx, database.ListOrderLineItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query order line items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.OrderLineItem
		if err := itemRows.Scan(&item.Seq, &item.OrderID, &item.MenuID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order line item: %w", err)
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].OrderLineItems = append(orders[i].OrderLineItems, item)
		}
	}
	return orders, itemRows.Err()
}

// UpdateOrder locks the order row, applies fn and writes the new status together with a log entry.
// Nothing is written when fn fails.
func (s *Store) UpdateOrder(ctx context.Context, id int64, changedBy string, fn func(*models.Order) error) (*models.Order, error) {
	var updated *models.Order

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := loadOrder(ctx, tx, database.GetOrderForUpdateSQL, id)
		if err != nil {
			return err
		}

		previous := order.OrderStatus
		if err := fn(order); err != nil {
			return err
		}

		var notes *string
		if order.OrderStatus == previous {
			unchanged := "status unchanged"
			notes = &unchanged
		}

		if _, err := tx.Exec(ctx, database.UpdateOrderStatusSQL, order.OrderStatus.String(), order.ID); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if _, err := tx.Exec(ctx, database.InsertOrderStatusLogSQL, order.ID, order.OrderStatus.String(), changedBy, notes); err != nil {
			return fmt.Errorf("failed to insert order status log: %w", err)
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) OrderHistory(ctx context.Context, id int64) ([]models.OrderStatusHistory, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, database.OrderExistsSQL, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check order existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", models.ErrOrderNotFound, id)
	}

	rows, err := s.db.Query(ctx, database.GetOrderStatusHistorySQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	history := []models.OrderStatusHistory{}
	for rows.Next() {
		var (
			entry  models.OrderStatusHistory
			status string
		)
		if err := rows.Scan(&status, &entry.ChangedBy, &entry.ChangedAt, &entry.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan order history row: %w", err)
		}
		if entry.Status, err = models.ParseOrderStatus(status); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// loadOrder reads one order with its line items using query, which selects a single order by id
func loadOrder(ctx context.Context, q queryRower, query string, id int64) (*models.Order, error) {
	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", models.ErrOrderNotFound, id)
		}
		return nil, err
	}

	rows, err := q.Query(ctx, database.GetOrderLineItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order line items: %w", err)
	}
	defer rows.Close()

	order.OrderLineItems = []models.OrderLineItem{}
	for rows.Next() {
		var item models.OrderLineItem
		if err := rows.Scan(&item.Seq, &item.OrderID, &item.MenuID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order line item: %w", err)
		}
		order.OrderLineItems = append(order.OrderLineItems, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order line items: %w", err)
	}
	return order, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order  models.Order
		status string
	)
	if err := row.Scan(&order.ID, &order.OrderTableID, &status, &order.OrderedTime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	order.OrderStatus = parsed
	return &order, nil
}
