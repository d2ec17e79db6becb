package repo

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopmind/shop-api/internal/entities"
)

type Order struct {
	OrderID       string          `db:"order_id"`
	UserID        string          `db:"user_id"`
	TotalPrice    decimal.Decimal `db:"total_price"`
	TotalQuantity int             `db:"total_quantity"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type OrderLine struct {
	OrderID   string `db:"order_id"`
	ProductID string `db:"product_id"`
	Quantity  int    `db:"quantity"`
}

type Product struct {
	ProductID   string          `db:"product_id"`
	Name        string          `db:"name"`
	Description sql.NullString  `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Quantity    int             `db:"quantity"`
	Image       sql.NullString  `db:"image"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

type User struct {
	UserID    string         `db:"user_id"`
	Username  string         `db:"username"`
	Password  string         `db:"password"`
	Name      string         `db:"name"`
	LastName  string         `db:"last_name"`
	Email     string         `db:"email"`
	Status    string         `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func OrderToEntity(o Order, lines []OrderLine) entities.Order {
	order := entities.Order{
		ID:            o.OrderID,
		UserID:        o.UserID,
		TotalPrice:    o.TotalPrice,
		TotalQuantity: o.TotalQuantity,
		Status:        entities.OrderStatus(o.Status),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}

	order.Lines = make([]entities.OrderLine, 0, len(lines))
	for _, ln := range lines {
		order.Lines = append(order.Lines, entities.OrderLine{
			ProductID: ln.ProductID,
			Quantity:  ln.Quantity,
		})
	}
	return order
}

func ProductToEntity(p Product) entities.Product {
	return entities.Product{
		ID:          p.ProductID,
		Name:        p.Name,
		Description: nullStringToString(p.Description),
		Price:       p.Price,
		Quantity:    p.Quantity,
		Image:       nullStringToString(p.Image),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func UserToEntity(u User) entities.User {
	return entities.User{
		ID:        u.UserID,
		Username:  u.Username,
		Password:  u.Password,
		Name:      u.Name,
		LastName:  u.LastName,
		Email:     u.Email,
		Status:    entities.UserStatus(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
