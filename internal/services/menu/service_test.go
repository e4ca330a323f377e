package menu

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
	"kitchenpos/internal/store/memory"
)

func newTestService() *Service {
	log := logger.NewWithWriter("menu-test", io.Discard, logger.ParseLevel("error"))
	return NewService(memory.New(), log)
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCreateMenu(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	group, err := s.CreateMenuGroup(ctx, &models.MenuGroupCreateRequest{Name: "chicken"}, "req")
	if err != nil {
		t.Fatalf("CreateMenuGroup: %v", err)
	}
	var productIDs []int64
	for _, p := range []struct{ name, price string }{{"fried", "10000"}, {"seasoned", "4000"}, {"soy", "5000"}} {
		product, err := s.CreateProduct(ctx, &models.ProductCreateRequest{Name: p.name, Price: price(p.price)}, "req")
		if err != nil {
			t.Fatalf("CreateProduct: %v", err)
		}
		productIDs = append(productIDs, product.ID)
	}

	tests := []struct {
		name    string
		req     *models.MenuCreateRequest
		wantErr error
	}{
		{
			name: "valid",
			req: &models.MenuCreateRequest{
				Name: "half and half", Price: price("16000"), MenuGroupID: group.ID,
				MenuProducts: []models.MenuProductRequest{
					{ProductID: productIDs[0], Quantity: 1},
					{ProductID: productIDs[1], Quantity: 1},
				},
			},
		},
		{
			name: "price above product sum is accepted",
			req: &models.MenuCreateRequest{
				Name: "premium", Price: price("99999.99"), MenuGroupID: group.ID,
				MenuProducts: []models.MenuProductRequest{{ProductID: productIDs[2], Quantity: 1}},
			},
		},
		{
			name: "unknown group",
			req: &models.MenuCreateRequest{
				Name: "orphan", Price: price("1000"), MenuGroupID: 42,
				MenuProducts: []models.MenuProductRequest{{ProductID: productIDs[0], Quantity: 1}},
			},
			wantErr: models.ErrMenuGroupNotFound,
		},
		{
			name: "unknown product",
			req: &models.MenuCreateRequest{
				Name: "ghost", Price: price("1000"), MenuGroupID: group.ID,
				MenuProducts: []models.MenuProductRequest{{ProductID: productIDs[0], Quantity: 1}, {ProductID: 42, Quantity: 1}},
			},
			wantErr: models.ErrProductNotFound,
		},
		{
			name:    "no products",
			req:     &models.MenuCreateRequest{Name: "empty", Price: price("0"), MenuGroupID: group.ID},
			wantErr: models.ErrInvalidMenu,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			menu, err := s.CreateMenu(ctx, tt.req, "req")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateMenu() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateMenu() error = %v", err)
			}
			if menu.ID == 0 {
				t.Error("menu id not assigned")
			}
			if !menu.Price.Equal(*tt.req.Price) {
				t.Errorf("price = %s, want %s", menu.Price, tt.req.Price)
			}
			for _, mp := range menu.MenuProducts {
				if mp.MenuID != menu.ID || mp.Seq == 0 {
					t.Errorf("menu product %+v not linked to menu %d", mp, menu.ID)
				}
			}
		})
	}

	menus, err := s.ListMenus(ctx)
	if err != nil {
		t.Fatalf("ListMenus: %v", err)
	}
	if len(menus) != 2 {
		t.Errorf("menus = %d, want 2", len(menus))
	}

	count, err := s.CountMenus(ctx, []int64{1, 2, 2, 3})
	if err != nil {
		t.Fatalf("CountMenus: %v", err)
	}
	if count != 2 {
		t.Errorf("CountMenus = %d, want 2", count)
	}
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	s := newTestService()

	_, err := s.CreateProduct(context.Background(), &models.ProductCreateRequest{Name: "refund", Price: price("-1")}, "req")
	if !errors.Is(err, models.ErrInvalidProduct) {
		t.Fatalf("error = %v, want ErrInvalidProduct", err)
	}

	products, _ := s.ListProducts(context.Background())
	if len(products) != 0 {
		t.Errorf("rejected product was stored")
	}
}
