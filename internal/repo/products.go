package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shopmind/shop-api/internal/entities"
)

var productColumns = []string{
	"product_id", "name", "description", "price",
	"quantity", "image", "created_at", "updated_at",
}

type ProductsRepo struct {
	base
}

func NewProductsRepo(db *sqlx.DB) *ProductsRepo {
	return &ProductsRepo{base: newBase(db)}
}

type ProductFilter struct {
	Name  string
	Page  int
	Limit int
}

// ProductUpdate описывает частичное изменение товара:
// nil-поля в запрос не попадают.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
	Image       *string
}

func (r *ProductsRepo) Insert(ctx context.Context, p entities.Product) (entities.Product, error) {
	query, args := r.qb.Insert("products").
		Columns("product_id", "name", "description", "price", "quantity", "image").
		Values(p.ID, p.Name, nullString(p.Description), p.Price, p.Quantity, nullString(p.Image)).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		MustSql()

	var row Product
	if err := r.getContext(ctx, &row, query, args...); err != nil {
		return entities.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return ProductToEntity(row), nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, productID string) (entities.Product, error) {
	query, args := r.qb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"product_id": productID}).
		MustSql()

	var row Product
	err := r.getContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Product{}, entities.ErrProductNotFound
	}
	if err != nil {
		return entities.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return ProductToEntity(row), nil
}

// GetByIDs возвращает товары, чьи идентификаторы встретились в ids.
// Отсутствующие просто не попадают в результат, порядок не гарантируется.
func (r *ProductsRepo) GetByIDs(ctx context.Context, ids []string) ([]entities.Product, error) {
	if len(ids) == 0 {
		return []entities.Product{}, nil
	}

	query, args := r.qb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"product_id": ids}).
		MustSql()

	var rows []Product
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}

	result := make([]entities.Product, 0, len(rows))
	for _, row := range rows {
		result = append(result, ProductToEntity(row))
	}
	return result, nil
}

func (r *ProductsRepo) GetByName(ctx context.Context, name string) (entities.Product, error) {
	query, args := r.qb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"name": name}).
		MustSql()

	var row Product
	err := r.getContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Product{}, entities.ErrProductNotFound
	}
	if err != nil {
		return entities.Product{}, fmt.Errorf("failed to get product by name: %w", err)
	}
	return ProductToEntity(row), nil
}

func (r *ProductsRepo) List(ctx context.Context, f ProductFilter) ([]entities.Product, int, error) {
	cond := sq.And{}
	if f.Name != "" {
		cond = append(cond, sq.ILike{"name": "%" + f.Name + "%"})
	}

	countQuery, countArgs := r.qb.Select("count(*)").
		From("products").
		Where(cond).
		MustSql()

	var total int
	if err := r.getContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query, args := r.qb.Select(productColumns...).
		From("products").
		Where(cond).
		OrderBy("created_at DESC", "product_id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64((f.Page - 1) * f.Limit)).
		MustSql()

	var rows []Product
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select products: %w", err)
	}

	result := make([]entities.Product, 0, len(rows))
	for _, row := range rows {
		result = append(result, ProductToEntity(row))
	}
	return result, total, nil
}

// Update изменяет только переданные поля. Quantity меняется лишь когда
// задан явно, чтобы не перетирать конкурентные резервы стока.
func (r *ProductsRepo) Update(ctx context.Context, productID string, u ProductUpdate) (entities.Product, error) {
	builder := r.qb.Update("products").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"product_id": productID}).
		Suffix("RETURNING " + strings.Join(productColumns, ", "))

	if u.Name != nil {
		builder = builder.Set("name", *u.Name)
	}
	if u.Description != nil {
		builder = builder.Set("description", nullString(*u.Description))
	}
	if u.Price != nil {
		builder = builder.Set("price", *u.Price)
	}
	if u.Quantity != nil {
		builder = builder.Set("quantity", *u.Quantity)
	}
	if u.Image != nil {
		builder = builder.Set("image", nullString(*u.Image))
	}
	query, args := builder.MustSql()

	var row Product
	err := r.getContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Product{}, entities.ErrProductNotFound
	}
	if err != nil {
		return entities.Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	return ProductToEntity(row), nil
}

func (r *ProductsRepo) Delete(ctx context.Context, productID string) error {
	query, args := r.qb.Delete("products").
		Where(sq.Eq{"product_id": productID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return entities.ErrProductNotFound
	}
	return nil
}

// AdjustStock атомарно меняет остаток на delta. Условие в WHERE служит
// авторитетной проверкой стока: уйти в минус нельзя даже при гонке.
func (r *ProductsRepo) AdjustStock(ctx context.Context, productID string, delta int) error {
	query, args := r.qb.Update("products").
		Set("quantity", sq.Expr("quantity + ?", delta)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"product_id": productID}).
		Where(sq.Expr("quantity + ? >= 0", delta)).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	if affected > 0 {
		return nil
	}

	product, err := r.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	return &entities.InsufficientStockError{
		ProductName: product.Name,
		Requested:   -delta,
		Available:   product.Quantity,
	}
}
