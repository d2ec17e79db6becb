package handler

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/internal/middleware"
	"github.com/shopmind/shop-api/internal/repo"
	"github.com/shopmind/shop-api/pkg/utils"
)

const productsRelation = "products.productId"

type OrderService interface {
	Create(ctx context.Context, userID string, lines []entities.OrderLine) (entities.Order, error)
	Amend(ctx context.Context, orderID string, lines []entities.OrderLine) (entities.Order, error)
	UpdateStatus(ctx context.Context, orderID, requested string) (entities.Order, error)
	GetByID(ctx context.Context, orderID string) (entities.Order, error)
	List(ctx context.Context, f repo.OrderFilter) ([]entities.Order, int, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]entities.Order, int, error)
	PopulateProducts(ctx context.Context, orders []entities.Order) (map[string]entities.Product, error)
}

type OrderHandler struct {
	logger *slog.Logger
	svc    OrderService
	auth   func(next http.Handler) http.Handler
}

func NewOrderHandler(logger *slog.Logger, svc OrderService, auth func(next http.Handler) http.Handler) *OrderHandler {
	return &OrderHandler{
		logger: logger.With(slog.String("handler", "order")),
		svc:    svc,
		auth:   auth,
	}
}

func (h *OrderHandler) Init(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Amend)
		r.Put("/status/{id}", h.UpdateStatus)
		r.Get("/search/{userId}", h.ListByUser)
	})
}

// Create создаёт заказ текущего пользователя.
// @Summary      Создать заказ
// @Description  Проверяет позиции, считает суммы по текущим ценам и резервирует сток
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        input body CreateOrderRequest true "Позиции заказа"
// @Success      201 {object} utils.SuccessResponse{data=OrderResponse}
// @Failure      400 {object} utils.ErrorResponse
// @Failure      401 {object} utils.ErrorResponse
// @Failure      409 {object} utils.ErrorResponse "Недостаточно товара на складе"
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.WriteError(w, "invalid session", http.StatusUnauthorized)
		return
	}

	var req CreateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.svc.Create(ctx, userID, linesToEntity(req.Lines))
	if err != nil {
		if entities.IsInsufficientStock(err) {
			stockRejections.Inc()
		}
		writeDomainError(ctx, w, h.logger, err)
		return
	}

	ordersCreated.Inc()
	utils.WriteData(w, orderToResponse(order, nil), http.StatusCreated)
}

// List возвращает заказы текущего пользователя.
// @Summary      Список заказов пользователя
// @Tags         orders
// @Produce      json
// @Param        page query int false "Номер страницы (с единицы)"
// @Param        limit query int false "Размер страницы (по умолчанию 20)"
// @Param        status query string false "Фильтр по статусу"
// @Param        with query string false "Связи через запятую, поддерживается products.productId"
// @Success      200 {object} utils.SuccessResponse{data=PageResponse}
// @Failure      401 {object} utils.ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.WriteError(w, "invalid session", http.StatusUnauthorized)
		return
	}

	page, limit := pageParams(r)
	filter := repo.OrderFilter{
		UserID: userID,
		Status: r.URL.Query().Get("status"),
		Page:   page,
		Limit:  limit,
	}

	orders, total, err := h.svc.List(ctx, filter)
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}

	products, err := h.populate(ctx, r, orders)
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}

	utils.WriteData(w, newPageResponse(ordersToResponse(orders, products), total, page, limit), http.StatusOK)
}

// GetByID возвращает заказ по идентификатору.
// @Summary      Заказ по id
// @Tags         orders
// @Produce      json
// @Param        id path string true "Идентификатор заказа"
// @Success      200 {object} utils.SuccessResponse{data=OrderResponse}
// @Failure      404 {object} utils.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.svc.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, orderToResponse(order, nil), http.StatusOK)
}

// Amend добавляет позиции к заказу. Статус этим путём менять нельзя.
// @Summary      Изменить заказ
// @Description  Принимает только добавление новых позиций, количество существующих меняться не может
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Идентификатор заказа"
// @Param        input body AmendOrderRequest true "Новый список позиций"
// @Success      200 {object} utils.SuccessResponse{data=OrderResponse}
// @Failure      400 {object} utils.ErrorResponse "Недопустимое изменение"
// @Failure      404 {object} utils.ErrorResponse
// @Failure      409 {object} utils.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [put]
func (h *OrderHandler) Amend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AmendOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status != nil {
		utils.WriteError(w, "status cannot be updated directly", http.StatusBadRequest)
		return
	}

	order, err := h.svc.Amend(ctx, chi.URLParam(r, "id"), linesToEntity(req.Lines))
	if err != nil {
		if entities.IsInsufficientStock(err) {
			stockRejections.Inc()
		}
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, orderToResponse(order, nil), http.StatusOK)
}

// UpdateStatus переводит заказ в новый статус.
// @Summary      Сменить статус заказа
// @Description  Транзакции вне таблицы переходов отклоняются, отмена возвращает сток
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Идентификатор заказа"
// @Param        input body UpdateStatusRequest true "Новый статус"
// @Success      200 {object} utils.SuccessResponse{data=OrderResponse}
// @Failure      400 {object} utils.ErrorResponse "Неизвестный статус"
// @Failure      404 {object} utils.ErrorResponse
// @Failure      409 {object} utils.ErrorResponse "Недопустимый переход"
// @Security     BearerAuth
// @Router       /orders/status/{id} [put]
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateStatusRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.svc.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}

	if order.Status == entities.StatusCancelled {
		ordersCancelled.Inc()
	}
	utils.WriteData(w, orderToResponse(order, nil), http.StatusOK)
}

// ListByUser возвращает заказы указанного пользователя.
// @Summary      Заказы пользователя
// @Tags         orders
// @Produce      json
// @Param        userId path string true "Идентификатор пользователя"
// @Param        page query int false "Номер страницы"
// @Param        limit query int false "Размер страницы"
// @Success      200 {object} utils.SuccessResponse{data=PageResponse}
// @Failure      401 {object} utils.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/search/{userId} [get]
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, limit := pageParams(r)
	orders, total, err := h.svc.ListByUser(ctx, chi.URLParam(r, "userId"), page, limit)
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, newPageResponse(ordersToResponse(orders, nil), total, page, limit), http.StatusOK)
}

// populate загружает товары, если клиент запросил ?with=products.productId.
// Неизвестные связи игнорируются.
func (h *OrderHandler) populate(ctx context.Context, r *http.Request, orders []entities.Order) (map[string]entities.Product, error) {
	raw := r.URL.Query().Get("with")
	if raw == "" {
		return nil, nil
	}

	relations := strings.Split(raw, ",")
	for i := range relations {
		relations[i] = strings.TrimSpace(relations[i])
	}
	if !slices.Contains(relations, productsRelation) {
		return nil, nil
	}
	return h.svc.PopulateProducts(ctx, orders)
}

func pageParams(r *http.Request) (page, limit int) {
	page = queryInt(r, "page", 1)
	limit = queryInt(r, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
