package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/internal/service"
)

type orderFixture struct {
	store  *fakeStore
	orders *fakeOrderRepo
	cache  *fakeCache
	events *fakePublisher
	svc    *service.OrderService
}

func newOrderFixture(products ...entities.Product) *orderFixture {
	store := newFakeStore(products...)
	orders := &fakeOrderRepo{store: store}
	cache := newFakeCache()
	events := &fakePublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := service.NewOrderService(
		logger,
		&fakeTxManager{store: store},
		orders,
		&fakeCatalog{store: store},
		cache,
		events,
	)
	return &orderFixture{store: store, orders: orders, cache: cache, events: events, svc: svc}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func keyboard(quantity int) entities.Product {
	return entities.Product{ID: "kb", Name: "Клавиатура", Price: price("49.90"), Quantity: quantity}
}

func mouse(quantity int) entities.Product {
	return entities.Product{ID: "ms", Name: "Мышь", Price: price("19.95"), Quantity: quantity}
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending order and reserves stock", func(t *testing.T) {
		f := newOrderFixture(keyboard(10), mouse(5))

		order, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
			{ProductID: "kb", Quantity: 2},
			{ProductID: "ms", Quantity: 3},
		})
		require.NoError(t, err)

		assert.NotEmpty(t, order.ID)
		assert.Equal(t, "user-1", order.UserID)
		assert.Equal(t, entities.StatusPending, order.Status)
		assert.Equal(t, 5, order.TotalQuantity)
		assert.True(t, order.TotalPrice.Equal(price("159.65")), "got %s", order.TotalPrice)

		assert.Equal(t, 8, f.store.products["kb"].Quantity)
		assert.Equal(t, 2, f.store.products["ms"].Quantity)

		require.Len(t, f.events.events, 1)
		assert.True(t, f.events.events[0].created)
	})

	t.Run("rejects empty lines", func(t *testing.T) {
		f := newOrderFixture(keyboard(10))

		_, err := f.svc.Create(ctx, "user-1", nil)
		assert.ErrorIs(t, err, entities.ErrInvalidInput)
	})

	t.Run("rejects duplicate product lines", func(t *testing.T) {
		f := newOrderFixture(keyboard(10))

		_, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
			{ProductID: "kb", Quantity: 1},
			{ProductID: "kb", Quantity: 1},
		})
		assert.ErrorIs(t, err, entities.ErrInvalidInput)
		assert.Empty(t, f.store.orders)
		assert.Equal(t, 10, f.store.products["kb"].Quantity)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		f := newOrderFixture(keyboard(10))

		_, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
			{ProductID: "kb", Quantity: 1},
			{ProductID: "ghost", Quantity: 1},
		})
		assert.ErrorIs(t, err, entities.ErrUnknownProduct)
		assert.Empty(t, f.store.orders)
	})

	t.Run("insufficient stock rolls back everything", func(t *testing.T) {
		f := newOrderFixture(keyboard(10), mouse(1))

		_, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
			{ProductID: "kb", Quantity: 2},
			{ProductID: "ms", Quantity: 5},
		})
		require.Error(t, err)
		assert.True(t, entities.IsInsufficientStock(err))

		// ни заказа, ни частичного списания
		assert.Empty(t, f.store.orders)
		assert.Equal(t, 10, f.store.products["kb"].Quantity)
		assert.Equal(t, 1, f.store.products["ms"].Quantity)
		assert.Empty(t, f.events.events)
	})

	t.Run("concurrent creates never oversell", func(t *testing.T) {
		f := newOrderFixture(keyboard(10))

		var g errgroup.Group
		for i := 0; i < 20; i++ {
			g.Go(func() error {
				_, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
					{ProductID: "kb", Quantity: 1},
				})
				if err != nil && !entities.IsInsufficientStock(err) {
					return err
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, 0, f.store.products["kb"].Quantity)
		assert.Len(t, f.store.orders, 10)
	})
}

func TestOrderService_Amend(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*orderFixture, entities.Order) {
		f := newOrderFixture(keyboard(10), mouse(5))
		order, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
			{ProductID: "kb", Quantity: 2},
		})
		require.NoError(t, err)
		return f, order
	}

	t.Run("adds new line and reserves its stock", func(t *testing.T) {
		f, order := setup(t)

		updated, err := f.svc.Amend(ctx, order.ID, []entities.OrderLine{
			{ProductID: "kb", Quantity: 2},
			{ProductID: "ms", Quantity: 3},
		})
		require.NoError(t, err)

		assert.Equal(t, 5, updated.TotalQuantity)
		assert.True(t, updated.TotalPrice.Equal(price("159.65")), "got %s", updated.TotalPrice)
		assert.Equal(t, 8, f.store.products["kb"].Quantity)
		assert.Equal(t, 2, f.store.products["ms"].Quantity)
		assert.Contains(t, f.cache.removed, order.ID)
	})

	t.Run("rejects quantity change of existing line", func(t *testing.T) {
		f, order := setup(t)

		_, err := f.svc.Amend(ctx, order.ID, []entities.OrderLine{
			{ProductID: "kb", Quantity: 5},
		})
		assert.ErrorIs(t, err, entities.ErrIllegalAmendment)
		assert.Equal(t, 8, f.store.products["kb"].Quantity)
	})

	t.Run("rejects line removal", func(t *testing.T) {
		f, order := setup(t)

		_, err := f.svc.Amend(ctx, order.ID, []entities.OrderLine{
			{ProductID: "ms", Quantity: 1},
		})
		assert.ErrorIs(t, err, entities.ErrIllegalAmendment)
	})

	t.Run("rejects amend when order is not pending", func(t *testing.T) {
		f, order := setup(t)

		_, err := f.svc.UpdateStatus(ctx, order.ID, "CONFIRMED")
		require.NoError(t, err)

		_, err = f.svc.Amend(ctx, order.ID, []entities.OrderLine{
			{ProductID: "kb", Quantity: 2},
			{ProductID: "ms", Quantity: 1},
		})
		assert.ErrorIs(t, err, entities.ErrIllegalTransition)
	})

	t.Run("insufficient stock for added line rolls back", func(t *testing.T) {
		f, order := setup(t)

		_, err := f.svc.Amend(ctx, order.ID, []entities.OrderLine{
			{ProductID: "kb", Quantity: 2},
			{ProductID: "ms", Quantity: 50},
		})
		require.Error(t, err)
		assert.True(t, entities.IsInsufficientStock(err))

		current := f.store.orders[order.ID]
		assert.Equal(t, 2, current.TotalQuantity)
		assert.Equal(t, 5, f.store.products["ms"].Quantity)
	})

	t.Run("unknown order", func(t *testing.T) {
		f, _ := setup(t)

		_, err := f.svc.Amend(ctx, "missing", []entities.OrderLine{
			{ProductID: "kb", Quantity: 1},
		})
		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*orderFixture, entities.Order) {
		f := newOrderFixture(keyboard(10))
		order, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
			{ProductID: "kb", Quantity: 4},
		})
		require.NoError(t, err)
		return f, order
	}

	t.Run("walks the full lifecycle", func(t *testing.T) {
		f, order := setup(t)

		for _, status := range []string{"CONFIRMED", "SHIPPED", "DELIVERED"} {
			updated, err := f.svc.UpdateStatus(ctx, order.ID, status)
			require.NoError(t, err)
			assert.Equal(t, entities.OrderStatus(status), updated.Status)
		}

		// событие на каждую смену статуса
		changes := 0
		for _, e := range f.events.events {
			if !e.created {
				changes++
			}
		}
		assert.Equal(t, 3, changes)
	})

	t.Run("cancel restores reserved stock", func(t *testing.T) {
		f, order := setup(t)
		require.Equal(t, 6, f.store.products["kb"].Quantity)

		updated, err := f.svc.UpdateStatus(ctx, order.ID, "CANCELLED")
		require.NoError(t, err)
		assert.Equal(t, entities.StatusCancelled, updated.Status)
		assert.Equal(t, 10, f.store.products["kb"].Quantity)
	})

	t.Run("rejects transition outside the table", func(t *testing.T) {
		f, order := setup(t)

		_, err := f.svc.UpdateStatus(ctx, order.ID, "DELIVERED")
		assert.ErrorIs(t, err, entities.ErrIllegalTransition)
	})

	t.Run("rejects cancelling delivered order", func(t *testing.T) {
		f, order := setup(t)

		for _, status := range []string{"CONFIRMED", "SHIPPED", "DELIVERED"} {
			_, err := f.svc.UpdateStatus(ctx, order.ID, status)
			require.NoError(t, err)
		}

		_, err := f.svc.UpdateStatus(ctx, order.ID, "CANCELLED")
		assert.ErrorIs(t, err, entities.ErrIllegalTransition)
		assert.Equal(t, 6, f.store.products["kb"].Quantity)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		f, order := setup(t)

		_, err := f.svc.UpdateStatus(ctx, order.ID, "REFUNDED")
		assert.ErrorIs(t, err, entities.ErrInvalidInput)
	})

	t.Run("unknown order", func(t *testing.T) {
		f, _ := setup(t)

		_, err := f.svc.UpdateStatus(ctx, "missing", "CONFIRMED")
		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
	})
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("reads through cache", func(t *testing.T) {
		f := newOrderFixture(keyboard(10))
		order, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
			{ProductID: "kb", Quantity: 1},
		})
		require.NoError(t, err)

		got, err := f.svc.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)

		// второй раз отдаётся из кеша, даже если из хранилища заказ пропал
		delete(f.store.orders, order.ID)
		got, err = f.svc.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.svc.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
	})

	t.Run("does not retry expired deadline", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.getErr = fmt.Errorf("query order: %w", context.DeadlineExceeded)

		_, err := f.svc.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, f.orders.getCalls)
	})
}

func TestOrderService_ListByUser(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(keyboard(100))

	for i := 0; i < 25; i++ {
		_, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
			{ProductID: "kb", Quantity: 1},
		})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, "user-2", []entities.OrderLine{
		{ProductID: "kb", Quantity: 1},
	})
	require.NoError(t, err)

	orders, total, err := f.svc.ListByUser(ctx, "user-1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, orders, 20, "default page size")

	orders, total, err = f.svc.ListByUser(ctx, "user-1", 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, orders, 5)

	orders, _, err = f.svc.ListByUser(ctx, "user-3", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_PopulateProducts(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(keyboard(10), mouse(10))

	first, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
		{ProductID: "kb", Quantity: 1},
	})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, "user-1", []entities.OrderLine{
		{ProductID: "kb", Quantity: 1},
		{ProductID: "ms", Quantity: 2},
	})
	require.NoError(t, err)

	products, err := f.svc.PopulateProducts(ctx, []entities.Order{first, second})
	require.NoError(t, err)

	assert.Len(t, products, 2)
	assert.Equal(t, "Клавиатура", products["kb"].Name)
	assert.Equal(t, "Мышь", products["ms"].Name)
}
