package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/internal/repo"
)

type ProductRepo interface {
	Insert(ctx context.Context, p entities.Product) (entities.Product, error)
	GetByID(ctx context.Context, productID string) (entities.Product, error)
	GetByName(ctx context.Context, name string) (entities.Product, error)
	List(ctx context.Context, f repo.ProductFilter) ([]entities.Product, int, error)
	Update(ctx context.Context, productID string, u repo.ProductUpdate) (entities.Product, error)
	Delete(ctx context.Context, productID string) error
}

type ProductService struct {
	logger *slog.Logger
	repo   ProductRepo
}

func NewProductService(logger *slog.Logger, repo ProductRepo) *ProductService {
	return &ProductService{
		logger: logger.With(slog.String("service", "product")),
		repo:   repo,
	}
}

func (s *ProductService) Create(ctx context.Context, p entities.Product) (entities.Product, error) {
	if p.Name == "" || p.Price.IsNegative() || p.Quantity < 0 {
		return entities.Product{}, fmt.Errorf(
			"%w: name is required, price and quantity must be non-negative", entities.ErrInvalidInput)
	}

	if err := s.checkNameFree(ctx, p.Name, ""); err != nil {
		return entities.Product{}, err
	}

	p.ID = uuid.NewString()
	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		return entities.Product{}, err
	}

	s.logger.DebugContext(ctx, "product created", slog.String("product_id", created.ID))
	return created, nil
}

// Update применяет частичное изменение: незаданные поля не пишутся
// в базу, поэтому параллельное резервирование стока не перетирается.
func (s *ProductService) Update(ctx context.Context, productID string, u repo.ProductUpdate) (entities.Product, error) {
	if u.Name != nil {
		if *u.Name == "" {
			return entities.Product{}, fmt.Errorf("%w: name must not be empty", entities.ErrInvalidInput)
		}
		if err := s.checkNameFree(ctx, *u.Name, productID); err != nil {
			return entities.Product{}, err
		}
	}
	if u.Price != nil && u.Price.IsNegative() {
		return entities.Product{}, fmt.Errorf("%w: price must be non-negative", entities.ErrInvalidInput)
	}
	if u.Quantity != nil && *u.Quantity < 0 {
		return entities.Product{}, fmt.Errorf("%w: quantity must be non-negative", entities.ErrInvalidInput)
	}

	return s.repo.Update(ctx, productID, u)
}

func (s *ProductService) GetByID(ctx context.Context, productID string) (entities.Product, error) {
	return s.repo.GetByID(ctx, productID)
}

func (s *ProductService) List(ctx context.Context, f repo.ProductFilter) ([]entities.Product, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	return s.repo.List(ctx, f)
}

func (s *ProductService) Delete(ctx context.Context, productID string) error {
	return s.repo.Delete(ctx, productID)
}

func (s *ProductService) checkNameFree(ctx context.Context, name, excludeID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, entities.ErrProductNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != excludeID {
		return entities.ErrProductNameTaken
	}
	return nil
}
