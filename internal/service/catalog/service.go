// Package catalog manages stock categories.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/domain/validation"
	"github.com/mamadbah2/stockledger/internal/repository"
)

// Service implements category CRUD. ProductCount is counted from the stock
// collection on every read and never stored.
type Service struct {
	categories repository.CategoryRepository
	stocks     repository.StockRepository
	validator  *validation.Validator
	logger     *zap.Logger
}

func NewService(categories repository.CategoryRepository, stocks repository.StockRepository, validator *validation.Validator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{categories: categories, stocks: stocks, validator: validator, logger: logger}
}

func (s *Service) Create(ctx context.Context, in models.CategoryInput) (models.Category, error) {
	in, err := s.validator.ValidateCategory(in)
	if err != nil {
		return models.Category{}, err
	}

	created, err := s.categories.Create(ctx, models.Category{Name: in.Name, Description: in.Description})
	if err != nil {
		return models.Category{}, err
	}
	s.logger.Info("category created", zap.String("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if err := s.withCount(ctx, &categories[i]); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return models.Category{}, err
	}
	if err := s.withCount(ctx, &category); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

// Update replaces the name and description.
func (s *Service) Update(ctx context.Context, id string, in models.CategoryInput) (models.Category, error) {
	in, err := s.validator.ValidateCategory(in)
	if err != nil {
		return models.Category{}, err
	}

	updated, err := s.categories.Update(ctx, id, in)
	if err != nil {
		return models.Category{}, err
	}
	if err := s.withCount(ctx, &updated); err != nil {
		return models.Category{}, err
	}
	return updated, nil
}

// Delete removes the category. Records referencing it keep their category_id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.String("id", id))
	return nil
}

func (s *Service) withCount(ctx context.Context, c *models.Category) error {
	n, err := s.stocks.CountByCategory(ctx, c.ID)
	if err != nil {
		return err
	}
	c.ProductCount = n
	return nil
}
