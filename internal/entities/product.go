package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product товар каталога. Quantity хранит остаток на складе,
// в базе он не может стать отрицательным.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
