// Package memory keeps the whole point-of-sale state in process memory.
// It backs the service tests and the --store=memory mode.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kitchenpos/internal/models"
)

// Store is a mutex guarded in-memory implementation of every repository.
// Identifiers start at 1 and are handed out sequentially, so entity n lives at index n-1.
type Store struct {
	mu sync.RWMutex

	tables       []models.OrderTable
	menuGroups   []models.MenuGroup
	products     []models.Product
	menus        []models.Menu
	orders       []models.Order
	history      map[int64][]models.OrderStatusHistory
	menuProducts int64
	lineItems    int64

	now func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		history: make(map[int64][]models.OrderStatusHistory),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) CreateTable(ctx context.Context, table *models.OrderTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table.ID = int64(len(s.tables) + 1)
	s.tables = append(s.tables, *table)
	return nil
}

func (s *Store) GetTable(ctx context.Context, id int64) (*models.OrderTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 1 || id > int64(len(s.tables)) {
		return nil, fmt.Errorf("%w: %d", models.ErrTableNotFound, id)
	}
	table := s.tables[id-1]
	return &table, nil
}

func (s *Store) ListTables(ctx context.Context) ([]models.OrderTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]models.OrderTable, len(s.tables))
	copy(tables, s.tables)
	return tables, nil
}

func (s *Store) UpdateTableEmpty(ctx context.Context, id int64, empty bool) (*models.OrderTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 1 || id > int64(len(s.tables)) {
		return nil, fmt.Errorf("%w: %d", models.ErrTableNotFound, id)
	}
	s.tables[id-1].Empty = empty
	table := s.tables[id-1]
	return &table, nil
}

func (s *Store) CreateMenuGroup(ctx context.Context, group *models.MenuGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group.ID = int64(len(s.menuGroups) + 1)
	s.menuGroups = append(s.menuGroups, *group)
	return nil
}

func (s *Store) ListMenuGroups(ctx context.Context) ([]models.MenuGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.MenuGroup, len(s.menuGroups))
	copy(groups, s.menuGroups)
	return groups, nil
}

func (s *Store) MenuGroupExists(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return id >= 1 && id <= int64(len(s.menuGroups)), nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = int64(len(s.products) + 1)
	s.products = append(s.products, *product)
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, len(s.products))
	copy(products, s.products)
	return products, nil
}

func (s *Store) CountProducts(ctx context.Context, ids []int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return countExisting(ids, int64(len(s.products))), nil
}

func (s *Store) CreateMenu(ctx context.Context, menu *models.Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	menu.ID = int64(len(s.menus) + 1)
	for i := range menu.MenuProducts {
		s.menuProducts++
		menu.MenuProducts[i].Seq = s.menuProducts
		menu.MenuProducts[i].MenuID = menu.ID
	}
	s.menus = append(s.menus, cloneMenu(menu))
	return nil
}

func (s *Store) ListMenus(ctx context.Context) ([]models.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	menus := make([]models.Menu, 0, len(s.menus))
	for i := range s.menus {
		menus = append(menus, cloneMenu(&s.menus[i]))
	}
	return menus, nil
}

func (s *Store) CountMenus(ctx context.Context, ids []int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return countExisting(ids, int64(len(s.menus))), nil
}

// CreateOrder checks the order table, assigns identifiers to the order and its
// line items and records the initial status, all under one lock.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, changedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	id := order.OrderTableID
	if id < 1 || id > int64(len(s.tables)) {
		return fmt.Errorf("%w: %d", models.ErrTableNotFound, id)
	}
	if s.tables[id-1].Empty {
		return fmt.Errorf("%w: %d", models.ErrTableEmpty, id)
	}

	order.ID = int64(len(s.orders) + 1)
	for i := range order.OrderLineItems {
		s.lineItems++
		order.OrderLineItems[i].Seq = s.lineItems
		order.OrderLineItems[i].OrderID = order.ID
	}

	s.orders = append(s.orders, *order.Clone())
	s.appendHistory(order.ID, order.OrderStatus, changedBy, "order created")
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 1 || id > int64(len(s.orders)) {
		return nil, fmt.Errorf("%w: %d", models.ErrOrderNotFound, id)
	}
	return s.orders[id-1].Clone(), nil
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for i := range s.orders {
		orders = append(orders, *s.orders[i].Clone())
	}
	return orders, nil
}

// UpdateOrder applies fn to a copy of the stored order and keeps the result only when fn succeeds
func (s *Store) UpdateOrder(ctx context.Context, id int64, changedBy string, fn func(*models.Order) error) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 1 || id > int64(len(s.orders)) {
		return nil, fmt.Errorf("%w: %d", models.ErrOrderNotFound, id)
	}

	order := s.orders[id-1].Clone()
	previous := order.OrderStatus
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.orders[id-1] = *order.Clone()
	if order.OrderStatus != previous {
		s.appendHistory(order.ID, order.OrderStatus, changedBy, "")
	} else {
		s.appendHistory(order.ID, order.OrderStatus, changedBy, "status unchanged")
	}
	return order, nil
}

func (s *Store) OrderHistory(ctx context.Context, id int64) ([]models.OrderStatusHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 1 || id > int64(len(s.orders)) {
		return nil, fmt.Errorf("%w: %d", models.ErrOrderNotFound, id)
	}
	history := make([]models.OrderStatusHistory, len(s.history[id]))
	copy(history, s.history[id])
	return history, nil
}

// appendHistory must be called with mu held
func (s *Store) appendHistory(orderID int64, status models.OrderStatus, changedBy, notes string) {
	entry := models.OrderStatusHistory{
		Status:    status,
		ChangedBy: changedBy,
		ChangedAt: s.now(),
	}
	if notes != "" {
		entry.Notes = &notes
	}
	s.history[orderID] = append(s.history[orderID], entry)
}

// countExisting counts the distinct ids within [1, last]
func countExisting(ids []int64, last int64) int {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id >= 1 && id <= last {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

func cloneMenu(menu *models.Menu) models.Menu {
	c := *menu
	c.MenuProducts = make([]models.MenuProduct, len(menu.MenuProducts))
	copy(c.MenuProducts, menu.MenuProducts)
	return c
}
