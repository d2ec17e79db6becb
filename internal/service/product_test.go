package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/internal/repo"
	"github.com/shopmind/shop-api/internal/service"
)

type fakeProductRepo struct {
	products map[string]entities.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]entities.Product)}
}

func (r *fakeProductRepo) Insert(_ context.Context, p entities.Product) (entities.Product, error) {
	r.products[p.ID] = p
	return p, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, productID string) (entities.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return entities.Product{}, entities.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) GetByName(_ context.Context, name string) (entities.Product, error) {
	for _, p := range r.products {
		if p.Name == name {
			return p, nil
		}
	}
	return entities.Product{}, entities.ErrProductNotFound
}

func (r *fakeProductRepo) List(_ context.Context, f repo.ProductFilter) ([]entities.Product, int, error) {
	products := make([]entities.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	return products, len(products), nil
}

func (r *fakeProductRepo) Update(_ context.Context, productID string, u repo.ProductUpdate) (entities.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return entities.Product{}, entities.ErrProductNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	r.products[productID] = p
	return p, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, productID string) error {
	if _, ok := r.products[productID]; !ok {
		return entities.ErrProductNotFound
	}
	delete(r.products, productID)
	return nil
}

func newProductService(repo *fakeProductRepo) *service.ProductService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewProductService(logger, repo)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id", func(t *testing.T) {
		svc := newProductService(newFakeProductRepo())

		created, err := svc.Create(ctx, entities.Product{
			Name:     "Клавиатура",
			Price:    decimal.RequireFromString("49.90"),
			Quantity: 10,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		svc := newProductService(newFakeProductRepo())

		_, err := svc.Create(ctx, entities.Product{Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, entities.ErrInvalidInput)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		svc := newProductService(newFakeProductRepo())

		_, err := svc.Create(ctx, entities.Product{
			Name:  "Клавиатура",
			Price: decimal.RequireFromString("-1"),
		})
		assert.ErrorIs(t, err, entities.ErrInvalidInput)
	})

	t.Run("rejects taken name", func(t *testing.T) {
		repo := newFakeProductRepo()
		svc := newProductService(repo)

		_, err := svc.Create(ctx, entities.Product{Name: "Клавиатура", Price: decimal.NewFromInt(1)})
		require.NoError(t, err)

		_, err = svc.Create(ctx, entities.Product{Name: "Клавиатура", Price: decimal.NewFromInt(2)})
		assert.ErrorIs(t, err, entities.ErrProductNameTaken)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fakeProductRepo, *service.ProductService, entities.Product) {
		repo := newFakeProductRepo()
		svc := newProductService(repo)
		created, err := svc.Create(ctx, entities.Product{
			Name:        "Клавиатура",
			Description: "механическая",
			Price:       decimal.RequireFromString("49.90"),
			Quantity:    10,
		})
		require.NoError(t, err)
		return repo, svc, created
	}

	t.Run("updates only provided fields", func(t *testing.T) {
		_, svc, created := setup(t)

		price := decimal.RequireFromString("59.90")
		updated, err := svc.Update(ctx, created.ID, repo.ProductUpdate{Price: &price})
		require.NoError(t, err)

		assert.Equal(t, "Клавиатура", updated.Name)
		assert.Equal(t, "механическая", updated.Description)
		assert.Equal(t, 10, updated.Quantity)
		assert.True(t, updated.Price.Equal(price))
	})

	t.Run("keeps quantity changed concurrently", func(t *testing.T) {
		fake, svc, created := setup(t)

		// заказ зарезервировал сток между чтением и записью админа
		reserved := fake.products[created.ID]
		reserved.Quantity = 3
		fake.products[created.ID] = reserved

		name := "Клавиатура про"
		updated, err := svc.Update(ctx, created.ID, repo.ProductUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, 3, updated.Quantity)
	})

	t.Run("allows setting quantity to zero", func(t *testing.T) {
		_, svc, created := setup(t)

		zero := 0
		updated, err := svc.Update(ctx, created.ID, repo.ProductUpdate{Quantity: &zero})
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Quantity)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, svc, created := setup(t)

		negative := -1
		_, err := svc.Update(ctx, created.ID, repo.ProductUpdate{Quantity: &negative})
		assert.ErrorIs(t, err, entities.ErrInvalidInput)
	})

	t.Run("rejects rename to taken name", func(t *testing.T) {
		_, svc, created := setup(t)

		_, err := svc.Create(ctx, entities.Product{Name: "Мышь", Price: decimal.NewFromInt(1)})
		require.NoError(t, err)

		name := "Мышь"
		_, err = svc.Update(ctx, created.ID, repo.ProductUpdate{Name: &name})
		assert.ErrorIs(t, err, entities.ErrProductNameTaken)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, svc, _ := setup(t)

		name := "Новое"
		_, err := svc.Update(ctx, "missing", repo.ProductUpdate{Name: &name})
		assert.ErrorIs(t, err, entities.ErrProductNotFound)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	svc := newProductService(repo)

	created, err := svc.Create(ctx, entities.Product{Name: "Клавиатура", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), entities.ErrProductNotFound)
}
