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

var orderColumns = []string{
	"order_id", "user_id", "total_price", "total_quantity",
	"status", "created_at", "updated_at",
}

type OrdersRepo struct {
	base
}

func NewOrdersRepo(db *sqlx.DB) *OrdersRepo {
	return &OrdersRepo{base: newBase(db)}
}

// OrderFilter описывает выборку списка заказов. Page нумеруется с единицы.
type OrderFilter struct {
	UserID string
	Status string
	Page   int
	Limit  int
}

func (r *OrdersRepo) Insert(ctx context.Context, o entities.Order) (entities.Order, error) {
	query, args := r.qb.Insert("orders").
		Columns("order_id", "user_id", "total_price", "total_quantity", "status").
		Values(o.ID, o.UserID, o.TotalPrice, o.TotalQuantity, string(o.Status)).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		MustSql()

	var row Order
	if err := r.getContext(ctx, &row, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	if err := r.insertLines(ctx, o.ID, o.Lines); err != nil {
		return entities.Order{}, err
	}

	lines, err := r.selectLines(ctx, o.ID)
	if err != nil {
		return entities.Order{}, err
	}
	return OrderToEntity(row, lines), nil
}

func (r *OrdersRepo) GetByID(ctx context.Context, orderID string) (entities.Order, error) {
	return r.get(ctx, orderID, false)
}

// GetByIDForUpdate блокирует строку заказа до конца транзакции.
// Так сериализуются конкурентные изменения одного заказа.
func (r *OrdersRepo) GetByIDForUpdate(ctx context.Context, orderID string) (entities.Order, error) {
	return r.get(ctx, orderID, true)
}

func (r *OrdersRepo) get(ctx context.Context, orderID string, forUpdate bool) (entities.Order, error) {
	q := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"order_id": orderID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	query, args := q.MustSql()

	var row Order
	err := r.getContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	lines, err := r.selectLines(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}
	return OrderToEntity(row, lines), nil
}

func (r *OrdersRepo) List(ctx context.Context, f OrderFilter) ([]entities.Order, int, error) {
	cond := sq.And{}
	if f.UserID != "" {
		cond = append(cond, sq.Eq{"user_id": f.UserID})
	}
	if f.Status != "" {
		cond = append(cond, sq.Eq{"status": f.Status})
	}

	countQuery, countArgs := r.qb.Select("count(*)").
		From("orders").
		Where(cond).
		MustSql()

	var total int
	if err := r.getContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(cond).
		OrderBy("created_at DESC", "order_id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(offset)).
		MustSql()

	var rows []Order
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select orders: %w", err)
	}
	if len(rows) == 0 {
		return []entities.Order{}, total, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.OrderID
	}

	query, args = r.qb.Select("order_id", "product_id", "quantity").
		From("order_products").
		Where(sq.Eq{"order_id": ids}).
		MustSql()

	var lines []OrderLine
	if err := r.selectContext(ctx, &lines, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select order lines: %w", err)
	}
	linesMap := make(map[string][]OrderLine, len(ids))
	for _, ln := range lines {
		linesMap[ln.OrderID] = append(linesMap[ln.OrderID], ln)
	}

	result := make([]entities.Order, 0, len(rows))
	for _, row := range rows {
		result = append(result, OrderToEntity(row, linesMap[row.OrderID]))
	}
	return result, total, nil
}

// ReplaceLines заменяет позиции заказа и его производные суммы.
func (r *OrdersRepo) ReplaceLines(
	ctx context.Context,
	orderID string,
	lines []entities.OrderLine,
	totalPrice decimal.Decimal,
	totalQuantity int,
) (entities.Order, error) {
	query, args := r.qb.Update("orders").
		Set("total_price", totalPrice).
		Set("total_quantity", totalQuantity).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to update order totals: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return entities.Order{}, entities.ErrOrderNotFound
	}

	query, args = r.qb.Delete("order_products").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to delete order lines: %w", err)
	}

	if err := r.insertLines(ctx, orderID, lines); err != nil {
		return entities.Order{}, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *OrdersRepo) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (entities.Order, error) {
	query, args := r.qb.Update("orders").
		Set("status", string(status)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return r.GetByID(ctx, orderID)
}

func (r *OrdersRepo) insertLines(ctx context.Context, orderID string, lines []entities.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.qb.Insert("order_products").
		Columns("order_id", "product_id", "quantity")
	for _, ln := range lines {
		q = q.Values(orderID, ln.ProductID, ln.Quantity)
	}

	query, args := q.MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order lines: %w", err)
	}
	return nil
}

func (r *OrdersRepo) selectLines(ctx context.Context, orderID string) ([]OrderLine, error) {
	query, args := r.qb.Select("order_id", "product_id", "quantity").
		From("order_products").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var lines []OrderLine
	if err := r.selectContext(ctx, &lines, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order lines: %w", err)
	}
	return lines, nil
}
