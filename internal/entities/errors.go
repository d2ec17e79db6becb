package entities

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrInvalidInput некорректная форма запроса (пустые позиции,
	// количество меньше единицы и т.п.).
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownProduct позиция ссылается на несуществующий товар.
	ErrUnknownProduct = errors.New("one or more products do not exist")
	// ErrIllegalAmendment попытка изменить количество существующей позиции,
	// удалить позицию или поменять статус через изменение заказа.
	ErrIllegalAmendment = errors.New("cannot update product quantity, only new products can be added")
	// ErrIllegalTransition смена статуса, которой нет в таблице переходов.
	ErrIllegalTransition = errors.New("illegal status transition")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrProductNameTaken   = errors.New("product name already exists")
)

// InsufficientStockError возвращается, когда запрошенное количество
// превышает остаток на складе. Остаток фиксируется на момент проверки.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"requested quantity (%d) exceeds available stock (%d) for product %s",
		e.Requested, e.Available, e.ProductName,
	)
}

func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
