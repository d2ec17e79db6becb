package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/internal/repo"
)

// fakeStore общее состояние заказов и товаров для фейковых
// репозиториев. Мьютекс держится на всю транзакцию, как и
// блокировка строк в настоящей базе.
type fakeStore struct {
	mu       sync.Mutex
	orders   map[string]entities.Order
	products map[string]entities.Product
}

func newFakeStore(products ...entities.Product) *fakeStore {
	s := &fakeStore{
		orders:   make(map[string]entities.Order),
		products: make(map[string]entities.Product),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) snapshot() (map[string]entities.Order, map[string]entities.Product) {
	orders := make(map[string]entities.Order, len(s.orders))
	for k, v := range s.orders {
		orders[k] = v
	}
	products := make(map[string]entities.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	return orders, products
}

// fakeTxManager сериализует транзакции и откатывает состояние
// хранилища при ошибке callback.
type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	orders, products := m.store.snapshot()
	if err := callback(ctx); err != nil {
		m.store.orders = orders
		m.store.products = products
		return err
	}
	return nil
}

type fakeOrderRepo struct {
	store *fakeStore

	getCalls int
	getErr   error
}

func (r *fakeOrderRepo) Insert(_ context.Context, o entities.Order) (entities.Order, error) {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.store.orders[o.ID] = o
	return o, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, orderID string) (entities.Order, error) {
	r.getCalls++
	if r.getErr != nil {
		return entities.Order{}, r.getErr
	}
	order, ok := r.store.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) GetByIDForUpdate(ctx context.Context, orderID string) (entities.Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r *fakeOrderRepo) List(_ context.Context, f repo.OrderFilter) ([]entities.Order, int, error) {
	matched := make([]entities.Order, 0)
	for _, o := range r.store.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		matched = append(matched, o)
	}

	total := len(matched)
	offset := (f.Page - 1) * f.Limit
	if offset >= total {
		return []entities.Order{}, total, nil
	}
	end := offset + f.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeOrderRepo) ReplaceLines(
	_ context.Context,
	orderID string,
	lines []entities.OrderLine,
	totalPrice decimal.Decimal,
	totalQuantity int,
) (entities.Order, error) {
	order, ok := r.store.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	order.Lines = lines
	order.TotalPrice = totalPrice
	order.TotalQuantity = totalQuantity
	order.UpdatedAt = time.Now().UTC()
	r.store.orders[orderID] = order
	return order, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, orderID string, status entities.OrderStatus) (entities.Order, error) {
	order, ok := r.store.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.store.orders[orderID] = order
	return order, nil
}

type fakeCatalog struct {
	store *fakeStore
}

func (c *fakeCatalog) GetByIDs(_ context.Context, ids []string) ([]entities.Product, error) {
	products := make([]entities.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.store.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (c *fakeCatalog) AdjustStock(_ context.Context, productID string, delta int) error {
	product, ok := c.store.products[productID]
	if !ok {
		return entities.ErrProductNotFound
	}
	if product.Quantity+delta < 0 {
		return &entities.InsufficientStockError{
			ProductName: product.Name,
			Requested:   -delta,
			Available:   product.Quantity,
		}
	}
	product.Quantity += delta
	c.store.products[productID] = product
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	removed []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	return data, ok
}

func (c *fakeCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *fakeCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.removed = append(c.removed, key)
}

type publishedEvent struct {
	orderID  string
	previous entities.OrderStatus
	created  bool
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) OrderCreated(_ context.Context, order entities.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{orderID: order.ID, created: true})
}

func (p *fakePublisher) OrderStatusChanged(_ context.Context, order entities.Order, previous entities.OrderStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{orderID: order.ID, previous: previous})
}
