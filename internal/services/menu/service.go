package menu

import (
	"context"
	"fmt"

	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
	"kitchenpos/internal/validation"
)

// Repository persists menu groups, products and menus
type Repository interface {
	CreateMenuGroup(ctx context.Context, group *models.MenuGroup) error
	ListMenuGroups(ctx context.Context) ([]models.MenuGroup, error)
	MenuGroupExists(ctx context.Context, id int64) (bool, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	CountProducts(ctx context.Context, ids []int64) (int, error)
	CreateMenu(ctx context.Context, menu *models.Menu) error
	ListMenus(ctx context.Context) ([]models.Menu, error)
	CountMenus(ctx context.Context, ids []int64) (int, error)
}

// Service manages the menu catalog
type Service struct {
	repo   Repository
	logger *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

func (s *Service) CreateMenuGroup(ctx context.Context, req *models.MenuGroupCreateRequest, requestID string) (*models.MenuGroup, error) {
	if err := validation.ValidateMenuGroupCreateRequest(req); err != nil {
		return nil, err
	}

	group := &models.MenuGroup{Name: req.Name}
	if err := s.repo.CreateMenuGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to save menu group: %w", err)
	}

	s.logger.Debug("menu_group_created", fmt.Sprintf("Menu group %q created", group.Name), requestID, map[string]interface{}{
		"menu_group_id": group.ID,
	})
	return group, nil
}

func (s *Service) ListMenuGroups(ctx context.Context) ([]models.MenuGroup, error) {
	return s.repo.ListMenuGroups(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, req *models.ProductCreateRequest, requestID string) (*models.Product, error) {
	if err := validation.ValidateProductCreateRequest(req); err != nil {
		return nil, err
	}

	product := &models.Product{Name: req.Name, Price: *req.Price}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Debug("product_created", fmt.Sprintf("Product %q created", product.Name), requestID, map[string]interface{}{
		"product_id": product.ID,
		"price":      product.Price.String(),
	})
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListProducts(ctx)
}

// CreateMenu stores a menu after checking its group and products exist.
// The menu price is taken as given.
func (s *Service) CreateMenu(ctx context.Context, req *models.MenuCreateRequest, requestID string) (*models.Menu, error) {
	if err := validation.ValidateMenuCreateRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.MenuGroupExists(ctx, req.MenuGroupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", models.ErrMenuGroupNotFound, req.MenuGroupID)
	}

	menu := &models.Menu{
		Name:         req.Name,
		Price:        *req.Price,
		MenuGroupID:  req.MenuGroupID,
		MenuProducts: make([]models.MenuProduct, 0, len(req.MenuProducts)),
	}
	for _, mp := range req.MenuProducts {
		menu.MenuProducts = append(menu.MenuProducts, models.MenuProduct{ProductID: mp.ProductID, Quantity: mp.Quantity})
	}

	productIDs := menu.ProductIDs()
	found, err := s.repo.CountProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	if found != len(productIDs) {
		return nil, fmt.Errorf("%w: %d of %d products exist", models.ErrProductNotFound, found, len(productIDs))
	}

	if err := s.repo.CreateMenu(ctx, menu); err != nil {
		return nil, fmt.Errorf("failed to save menu: %w", err)
	}

	s.logger.Debug("menu_created", fmt.Sprintf("Menu %q created", menu.Name), requestID, map[string]interface{}{
		"menu_id":       menu.ID,
		"menu_group_id": menu.MenuGroupID,
		"products":      len(menu.MenuProducts),
	})
	return menu, nil
}

func (s *Service) ListMenus(ctx context.Context) ([]models.Menu, error) {
	return s.repo.ListMenus(ctx)
}

// CountMenus returns how many of the distinct ids name an existing menu
func (s *Service) CountMenus(ctx context.Context, ids []int64) (int, error) {
	return s.repo.CountMenus(ctx, ids)
}
