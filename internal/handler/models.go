package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopmind/shop-api/internal/entities"
)

// OrderLineRequest позиция заказа в теле запроса
// swagger:model OrderLineRequest
type OrderLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest тело POST /orders
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Lines []OrderLineRequest `json:"lines"`
}

// AmendOrderRequest тело PUT /orders/{id}. Поле status принимается
// только чтобы отклонить попытку сменить статус этим путём.
// swagger:model AmendOrderRequest
type AmendOrderRequest struct {
	Lines  []OrderLineRequest `json:"lines"`
	Status *string            `json:"status"`
}

// UpdateStatusRequest тело PUT /orders/status/{id}
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderLineResponse позиция заказа; product заполняется
// по запросу ?with=products.productId
type OrderLineResponse struct {
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *ProductResponse `json:"product,omitempty"`
}

// OrderResponse заказ в ответе API
// swagger:model OrderResponse
type OrderResponse struct {
	ID            string              `json:"id"`
	User          string              `json:"user"`
	Lines         []OrderLineResponse `json:"lines"`
	TotalPrice    decimal.Decimal     `json:"totalPrice"`
	TotalQuantity int                 `json:"totalQuantity"`
	Status        string              `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// ProductRequest тело создания/изменения товара
// swagger:model ProductRequest
type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image"`
}

// UpdateProductRequest тело частичного изменения товара:
// отсутствующие поля остаются как есть
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Image       *string          `json:"image"`
}

// ProductResponse товар в ответе API
// swagger:model ProductResponse
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// RegisterRequest тело регистрации пользователя
// swagger:model RegisterRequest
type RegisterRequest struct {
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Name            string `json:"name" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
}

// UpdateUserRequest тело изменения профиля
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// ChangePasswordRequest тело смены пароля
// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	Password    string `json:"password" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// UserResponse пользователь в ответе API, без пароля
// swagger:model UserResponse
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginRequest тело POST /auth/login
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse выданный токен
// swagger:model LoginResponse
type LoginResponse struct {
	Token string `json:"token"`
}

// PaginationInfo блок пагинации списочных ответов
// swagger:model PaginationInfo
type PaginationInfo struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// PageResponse списочный ответ: элементы плюс пагинация
// swagger:model PageResponse
type PageResponse struct {
	Items      any            `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

func newPageResponse(items any, total, page, limit int) PageResponse {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PageResponse{
		Items: items,
		Pagination: PaginationInfo{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}
}

func linesToEntity(lines []OrderLineRequest) []entities.OrderLine {
	result := make([]entities.OrderLine, 0, len(lines))
	for _, ln := range lines {
		result = append(result, entities.OrderLine{ProductID: ln.ProductID, Quantity: ln.Quantity})
	}
	return result
}

func orderToResponse(o entities.Order, products map[string]entities.Product) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, ln := range o.Lines {
		line := OrderLineResponse{ProductID: ln.ProductID, Quantity: ln.Quantity}
		if product, ok := products[ln.ProductID]; ok {
			resp := productToResponse(product)
			line.Product = &resp
		}
		lines = append(lines, line)
	}

	return OrderResponse{
		ID:            o.ID,
		User:          o.UserID,
		Lines:         lines,
		TotalPrice:    o.TotalPrice,
		TotalQuantity: o.TotalQuantity,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func ordersToResponse(orders []entities.Order, products map[string]entities.Product) []OrderResponse {
	result := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, orderToResponse(o, products))
	}
	return result
}

func productToResponse(p entities.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func productsToResponse(products []entities.Product) []ProductResponse {
	result := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		result = append(result, productToResponse(p))
	}
	return result
}

func userToResponse(u entities.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		LastName:  u.LastName,
		Email:     u.Email,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func usersToResponse(users []entities.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, userToResponse(u))
	}
	return result
}
