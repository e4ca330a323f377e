// Package postgres implements the repositories on top of the pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"kitchenpos/internal/database"
	"kitchenpos/internal/models"
)

// Store implements the table, menu and order repositories
type Store struct {
	db *database.DB
}

// New creates a store on an open database
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Ping tests the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) CreateTable(ctx context.Context, table *models.OrderTable) error {
	err := s.db.QueryRow(ctx, database.InsertOrderTableSQL, table.NumberOfGuests, table.Empty).Scan(&table.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order table: %w", err)
	}
	return nil
}

func (s *Store) GetTable(ctx context.Context, id int64) (*models.OrderTable, error) {
	var table models.OrderTable
	err := s.db.QueryRow(ctx, database.GetOrderTableSQL, id).Scan(&table.ID, &table.NumberOfGuests, &table.Empty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", models.ErrTableNotFound, id)
		}
		return nil, fmt.Errorf("failed to query order table: %w", err)
	}
	return &table, nil
}

func (s *Store) ListTables(ctx context.Context) ([]models.OrderTable, error) {
	rows, err := s.db.Query(ctx, database.ListOrderTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query order tables: %w", err)
	}
	defer rows.Close()

	tables := []models.OrderTable{}
	for rows.Next() {
		var table models.OrderTable
		if err := rows.Scan(&table.ID, &table.NumberOfGuests, &table.Empty); err != nil {
			return nil, fmt.Errorf("failed to scan order table: %w", err)
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}

func (s *Store) UpdateTableEmpty(ctx context.Context, id int64, empty bool) (*models.OrderTable, error) {
	var table models.OrderTable
	err := s.db.QueryRow(ctx, database.UpdateOrderTableEmptySQL, empty, id).Scan(&table.ID, &table.NumberOfGuests, &table.Empty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", models.ErrTableNotFound, id)
		}
		return nil, fmt.Errorf("failed to update order table: %w", err)
	}
	return &table, nil
}

func (s *Store) CreateMenuGroup(ctx context.Context, group *models.MenuGroup) error {
	if err := s.db.QueryRow(ctx, database.InsertMenuGroupSQL, group.Name).Scan(&group.ID); err != nil {
		return fmt.Errorf("failed to insert menu group: %w", err)
	}
	return nil
}

func (s *Store) ListMenuGroups(ctx context.Context) ([]models.MenuGroup, error) {
	rows, err := s.db.Query(ctx, database.ListMenuGroupsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu groups: %w", err)
	}
	defer rows.Close()

	groups := []models.MenuGroup{}
	for rows.Next() {
		var group models.MenuGroup
		if err := rows.Scan(&group.ID, &group.Name); err != nil {
			return nil, fmt.Errorf("failed to scan menu group: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (s *Store) MenuGroupExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, database.MenuGroupExistsSQL, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check menu group: %w", err)
	}
	return exists, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	err := s.db.QueryRow(ctx, database.InsertProductSQL, product.Name, product.Price.String()).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.Query(ctx, database.ListProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var (
			product models.Product
			price   string
		)
		if err := rows.Scan(&product.ID, &product.Name, &price); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if product.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse price of product %d: %w", product.ID, err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (s *Store) CountProducts(ctx context.Context, ids []int64) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, database.CountProductsSQL, ids).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// CreateMenu inserts the menu and its products in one transaction
func (s *Store) CreateMenu(ctx context.Context, menu *models.Menu) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, database.InsertMenuSQL, menu.Name, menu.Price.String(), menu.MenuGroupID).Scan(&menu.ID)
		if err != nil {
			return fmt.Errorf("failed to insert menu: %w", err)
		}

		for i := range menu.MenuProducts {
			mp := &menu.MenuProducts[i]
			mp.MenuID = menu.ID
			if err := tx.QueryRow(ctx, database.InsertMenuProductSQL, mp.MenuID, mp.ProductID, mp.Quantity).Scan(&mp.Seq); err != nil {
				return fmt.Errorf("failed to insert menu product %d: %w", mp.ProductID, err)
			}
		}
		return nil
	})
}

func (s *Store) ListMenus(ctx context.Context) ([]models.Menu, error) {
	rows, err := s.db.Query(ctx, database.ListMenusSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query menus: %w", err)
	}
	defer rows.Close()

	menus := []models.Menu{}
	index := make(map[int64]int)
	for rows.Next() {
		var (
			menu  models.Menu
			price string
		)
		if err := rows.Scan(&menu.ID, &menu.Name, &price, &menu.MenuGroupID); err != nil {
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		if menu.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse price of menu %d: %w", menu.ID, err)
		}
		menu.MenuProducts = []models.MenuProduct{}
		index[menu.ID] = len(menus)
		menus = append(menus, menu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menus: %w", err)
	}

	productRows, err := s.db.Query(ctx, database.ListMenuProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu products: %w", err)
	}
	defer productRows.Close()

	for productRows.Next() {
		var mp models.MenuProduct
		if err := productRows.Scan(&mp.Seq, &mp.MenuID, &mp.ProductID, &mp.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan menu product: %w", err)
		}
		if i, ok := index[mp.MenuID]; ok {
			menus[i].MenuProducts = append(menus[i].MenuProducts, mp)
		}
	}
	return menus, productRows.Err()
}

func (s *Store) CountMenus(ctx context.Context, ids []int64) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, database.CountMenusSQL, ids).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count menus: %w", err)
	}
	return count, nil
}
