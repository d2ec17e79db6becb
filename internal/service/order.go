package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/internal/repo"
	"github.com/shopmind/shop-api/pkg/trm"
	"github.com/shopmind/shop-api/pkg/utils"
)

type OrderRepo interface {
	Insert(ctx context.Context, o entities.Order) (entities.Order, error)
	GetByID(ctx context.Context, orderID string) (entities.Order, error)
	GetByIDForUpdate(ctx context.Context, orderID string) (entities.Order, error)
	List(ctx context.Context, f repo.OrderFilter) ([]entities.Order, int, error)
	ReplaceLines(ctx context.Context, orderID string, lines []entities.OrderLine, totalPrice decimal.Decimal, totalQuantity int) (entities.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (entities.Order, error)
}

// ProductCatalog шлюз к каталогу. AdjustStock обязан быть атомарным
// условным обновлением: при гонке именно он не даёт уйти в минус.
type ProductCatalog interface {
	GetByIDs(ctx context.Context, ids []string) ([]entities.Product, error)
	AdjustStock(ctx context.Context, productID string, delta int) error
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Remove(key string)
}

// EventPublisher публикует события жизненного цикла best-effort:
// ошибка публикации не влияет на результат операции.
type EventPublisher interface {
	OrderCreated(ctx context.Context, order entities.Order)
	OrderStatusChanged(ctx context.Context, order entities.Order, previous entities.OrderStatus)
}

type OrderService struct {
	logger    *slog.Logger
	txManager trm.Manager
	orders    OrderRepo
	products  ProductCatalog
	cache     Cache
	events    EventPublisher
}

func NewOrderService(
	logger *slog.Logger,
	txManager trm.Manager,
	orders OrderRepo,
	products ProductCatalog,
	cache Cache,
	events EventPublisher,
) *OrderService {
	return &OrderService{
		logger:    logger.With(slog.String("service", "order")),
		txManager: txManager,
		orders:    orders,
		products:  products,
		cache:     cache,
		events:    events,
	}
}

// Create проводит заказ: валидация, суммы по текущим ценам каталога,
// запись заказа и резервирование стока в одной транзакции.
// Неудачное резервирование откатывает и заказ, частичных списаний
// снаружи не видно.
func (s *OrderService) Create(ctx context.Context, userID string, lines []entities.OrderLine) (entities.Order, error) {
	if err := validateLines(lines); err != nil {
		return entities.Order{}, err
	}

	var created entities.Order
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		products, err := s.products.GetByIDs(ctx, lineProductIDs(lines))
		if err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
		byID := productIndex(products)
		if err := checkProductsExist(lines, byID); err != nil {
			return err
		}

		totals, err := computeTotals(lines, byID, stockCheckAll(lines))
		if err != nil {
			return err
		}

		order := entities.Order{
			ID:            uuid.NewString(),
			UserID:        userID,
			Lines:         lines,
			TotalPrice:    totals.price,
			TotalQuantity: totals.quantity,
			Status:        entities.StatusPending,
		}
		created, err = s.orders.Insert(ctx, order)
		if err != nil {
			return err
		}

		for _, ln := range lines {
			if err := s.products.AdjustStock(ctx, ln.ProductID, -ln.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.logger.DebugContext(ctx, "order created",
		slog.String("order_id", created.ID), slog.String("user_id", userID))
	s.events.OrderCreated(ctx, created)
	return created, nil
}

// Amend добавляет позиции к заказу в статусе PENDING. Количество
// существующих позиций менять нельзя, сток списывается только
// за новые позиции.
func (s *OrderService) Amend(ctx context.Context, orderID string, lines []entities.OrderLine) (entities.Order, error) {
	if err := validateLines(lines); err != nil {
		return entities.Order{}, err
	}

	var updated entities.Order
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if current.Status != entities.StatusPending {
			return fmt.Errorf("%w: order %s can no longer be amended",
				entities.ErrIllegalTransition, current.Status)
		}

		added, err := amendAdditions(current.Lines, lines)
		if err != nil {
			return err
		}

		products, err := s.products.GetByIDs(ctx, lineProductIDs(lines))
		if err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
		byID := productIndex(products)
		if err := checkProductsExist(lines, byID); err != nil {
			return err
		}

		totals, err := computeTotals(lines, byID, stockCheckAll(added))
		if err != nil {
			return err
		}

		updated, err = s.orders.ReplaceLines(ctx, orderID, lines, totals.price, totals.quantity)
		if err != nil {
			return err
		}

		for _, ln := range added {
			if err := s.products.AdjustStock(ctx, ln.ProductID, -ln.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.cache.Remove(orderID)
	s.logger.DebugContext(ctx, "order amended", slog.String("order_id", orderID))
	return updated, nil
}

// UpdateStatus переводит заказ по таблице переходов. Отмена
// недоставленного заказа возвращает зарезервированный сток.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, requested string) (entities.Order, error) {
	status, ok := entities.ParseOrderStatus(requested)
	if !ok {
		return entities.Order{}, fmt.Errorf("%w: invalid status %q", entities.ErrInvalidInput, requested)
	}

	var (
		updated  entities.Order
		previous entities.OrderStatus
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		previous = current.Status

		if !current.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", entities.ErrIllegalTransition, current.Status, status)
		}

		if status == entities.StatusCancelled {
			for _, ln := range current.Lines {
				if err := s.products.AdjustStock(ctx, ln.ProductID, ln.Quantity); err != nil {
					return fmt.Errorf("failed to restore stock: %w", err)
				}
			}
		}

		updated, err = s.orders.UpdateStatus(ctx, orderID, status)
		return err
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.cache.Remove(orderID)
	s.logger.DebugContext(ctx, "order status changed",
		slog.String("order_id", orderID),
		slog.String("from", string(previous)),
		slog.String("to", string(status)))
	s.events.OrderStatusChanged(ctx, updated, previous)
	return updated, nil
}

var readRetry = utils.RetryConfig{
	InitialDelay: 100 * time.Millisecond,
	MaxAttempts:  3,
	Multiplier:   2,
}

// GetByID читает заказ через кеш. Ретраится только чтение:
// мутации на этом уровне не повторяются.
func (s *OrderService) GetByID(ctx context.Context, orderID string) (entities.Order, error) {
	if data, ok := s.cache.Get(orderID); ok {
		var order entities.Order
		if err := order.Unmarshal(data); err == nil {
			return order, nil
		}
		s.cache.Remove(orderID)
	}

	var order entities.Order
	fn := func() error {
		var err error
		order, err = s.orders.GetByID(ctx, orderID)
		return err
	}
	if err := utils.Retry(readRetry, fn, entities.ErrOrderNotFound, context.Canceled, context.DeadlineExceeded); err != nil {
		return entities.Order{}, err
	}

	// Чтение, гонящееся с коммитом мутации, может положить в кеш
	// снимок до коммита уже после Remove. Такая запись живёт не дольше
	// TTL кеша, мутации сами кеш не читают.
	if data, err := order.Marshal(); err == nil {
		s.cache.Set(orderID, data)
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, f repo.OrderFilter) ([]entities.Order, int, error) {
	normalizeOrderFilter(&f)
	return s.orders.List(ctx, f)
}

func (s *OrderService) ListByUser(ctx context.Context, userID string, page, limit int) ([]entities.Order, int, error) {
	f := repo.OrderFilter{UserID: userID, Page: page, Limit: limit}
	normalizeOrderFilter(&f)
	return s.orders.List(ctx, f)
}

// PopulateProducts загружает товары, на которые ссылаются позиции
// заказов, для ?with=products.productId.
func (s *OrderService) PopulateProducts(ctx context.Context, orders []entities.Order) (map[string]entities.Product, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, order := range orders {
		for _, ln := range order.Lines {
			if _, ok := seen[ln.ProductID]; ok {
				continue
			}
			seen[ln.ProductID] = struct{}{}
			ids = append(ids, ln.ProductID)
		}
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return productIndex(products), nil
}

func normalizeOrderFilter(f *repo.OrderFilter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
}
