package models

import "github.com/shopspring/decimal"

// MenuGroup groups menus for display, e.g. "set menus" or "drinks"
type MenuGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a single sellable item
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuProduct links a product into a menu with a quantity
type MenuProduct struct {
	Seq       int64 `json:"seq"`
	MenuID    int64 `json:"menuId"`
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// Menu is a named, priced bundle of one or more products
type Menu struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	MenuGroupID  int64           `json:"menuGroupId"`
	MenuProducts []MenuProduct   `json:"menuProducts"`
}

// ProductIDs returns the distinct product ids of the menu
func (m *Menu) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(m.MenuProducts))
	ids := make([]int64, 0, len(m.MenuProducts))
	for _, mp := range m.MenuProducts {
		if _, ok := seen[mp.ProductID]; ok {
			continue
		}
		seen[mp.ProductID] = struct{}{}
		ids = append(ids, mp.ProductID)
	}
	return ids
}

// MenuGroupCreateRequest represents the request to create a menu group
type MenuGroupCreateRequest struct {
	Name string `json:"name"`
}

// ProductCreateRequest represents the request to create a product
type ProductCreateRequest struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

// MenuProductRequest is one product line of a menu creation request
type MenuProductRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// MenuCreateRequest represents the request to create a menu
type MenuCreateRequest struct {
	Name         string               `json:"name"`
	Price        *decimal.Decimal     `json:"price"`
	MenuGroupID  int64                `json:"menuGroupId"`
	MenuProducts []MenuProductRequest `json:"menuProducts"`
}
