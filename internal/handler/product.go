package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/internal/repo"
	"github.com/shopmind/shop-api/pkg/utils"
)

type ProductService interface {
	Create(ctx context.Context, p entities.Product) (entities.Product, error)
	Update(ctx context.Context, productID string, u repo.ProductUpdate) (entities.Product, error)
	GetByID(ctx context.Context, productID string) (entities.Product, error)
	List(ctx context.Context, f repo.ProductFilter) ([]entities.Product, int, error)
	Delete(ctx context.Context, productID string) error
}

type ProductHandler struct {
	logger *slog.Logger
	svc    ProductService
	auth   func(next http.Handler) http.Handler
}

func NewProductHandler(logger *slog.Logger, svc ProductService, auth func(next http.Handler) http.Handler) *ProductHandler {
	return &ProductHandler{
		logger: logger.With(slog.String("handler", "product")),
		svc:    svc,
		auth:   auth,
	}
}

func (h *ProductHandler) Init(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create добавляет товар в каталог.
// @Summary      Создать товар
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        input body ProductRequest true "Товар"
// @Success      201 {object} utils.SuccessResponse{data=ProductResponse}
// @Failure      400 {object} utils.ErrorResponse
// @Failure      409 {object} utils.ErrorResponse "Имя занято"
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ProductRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.svc.Create(ctx, productFromRequest(req, ""))
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, productToResponse(product), http.StatusCreated)
}

// List возвращает страницу каталога.
// @Summary      Список товаров
// @Tags         products
// @Produce      json
// @Param        name query string false "Фильтр по имени"
// @Param        page query int false "Номер страницы"
// @Param        limit query int false "Размер страницы"
// @Success      200 {object} utils.SuccessResponse{data=PageResponse}
// @Router       /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, limit := pageParams(r)
	filter := repo.ProductFilter{
		Name:  r.URL.Query().Get("name"),
		Page:  page,
		Limit: limit,
	}

	products, total, err := h.svc.List(ctx, filter)
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, newPageResponse(productsToResponse(products), total, page, limit), http.StatusOK)
}

// GetByID возвращает товар по идентификатору.
// @Summary      Товар по id
// @Tags         products
// @Produce      json
// @Param        id path string true "Идентификатор товара"
// @Success      200 {object} utils.SuccessResponse{data=ProductResponse}
// @Failure      404 {object} utils.ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := h.svc.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, productToResponse(product), http.StatusOK)
}

// Update обновляет поля товара, пустые поля не трогаются.
// @Summary      Обновить товар
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Идентификатор товара"
// @Param        input body UpdateProductRequest true "Новые значения"
// @Success      200 {object} utils.SuccessResponse{data=ProductResponse}
// @Failure      404 {object} utils.ErrorResponse
// @Failure      409 {object} utils.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateProductRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.svc.Update(ctx, chi.URLParam(r, "id"), repo.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Image:       req.Image,
	})
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, productToResponse(product), http.StatusOK)
}

// Delete удаляет товар.
// @Summary      Удалить товар
// @Tags         products
// @Produce      json
// @Param        id path string true "Идентификатор товара"
// @Success      200 {object} utils.SuccessResponse
// @Failure      404 {object} utils.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.svc.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, "product deleted", http.StatusOK)
}

func productFromRequest(req ProductRequest, id string) entities.Product {
	return entities.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Image:       req.Image,
	}
}
