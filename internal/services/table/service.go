package table

import (
	"context"
	"fmt"

	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
	"kitchenpos/internal/validation"
)

// Repository persists order tables
type Repository interface {
	CreateTable(ctx context.Context, table *models.OrderTable) error
	GetTable(ctx context.Context, id int64) (*models.OrderTable, error)
	ListTables(ctx context.Context) ([]models.OrderTable, error)
	UpdateTableEmpty(ctx context.Context, id int64, empty bool) (*models.OrderTable, error)
}

// Service manages table occupancy
type Service struct {
	repo   Repository
	logger *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

func (s *Service) CreateTable(ctx context.Context, req *models.TableCreateRequest, requestID string) (*models.OrderTable, error) {
	if err := validation.ValidateTableCreateRequest(req); err != nil {
		return nil, err
	}

	table := &models.OrderTable{
		NumberOfGuests: req.NumberOfGuests,
		Empty:          req.IsEmpty(),
	}
	if err := s.repo.CreateTable(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to save order table: %w", err)
	}

	s.logger.Debug("table_created", fmt.Sprintf("Order table %d created", table.ID), requestID, map[string]interface{}{
		"table_id": table.ID,
		"empty":    table.Empty,
	})
	return table, nil
}

func (s *Service) GetTable(ctx context.Context, id int64) (*models.OrderTable, error) {
	return s.repo.GetTable(ctx, id)
}

func (s *Service) ListTables(ctx context.Context) ([]models.OrderTable, error) {
	return s.repo.ListTables(ctx)
}

// ChangeEmpty sets the occupancy flag of a table
func (s *Service) ChangeEmpty(ctx context.Context, id int64, req *models.TableChangeEmptyRequest, requestID string) (*models.OrderTable, error) {
	table, err := s.repo.UpdateTableEmpty(ctx, id, req.Empty)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("table_empty_changed", fmt.Sprintf("Order table %d empty=%t", table.ID, table.Empty), requestID, map[string]interface{}{
		"table_id": table.ID,
		"empty":    table.Empty,
	})
	return table, nil
}
