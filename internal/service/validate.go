package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shopmind/shop-api/internal/entities"
)

// Чистые проверки над позициями заказа и снимком каталога.
// Никакого I/O: на входе данные запроса и уже загруженные товары.

type orderTotals struct {
	price    decimal.Decimal
	quantity int
}

func validateLines(lines []entities.OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: products are required and must not be empty", entities.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(lines))
	for _, ln := range lines {
		if ln.ProductID == "" || ln.Quantity < 1 {
			return fmt.Errorf(
				"%w: each product must have a valid productId and quantity greater or equal to 1",
				entities.ErrInvalidInput,
			)
		}
		if _, ok := seen[ln.ProductID]; ok {
			return fmt.Errorf("%w: duplicate productId %s", entities.ErrInvalidInput, ln.ProductID)
		}
		seen[ln.ProductID] = struct{}{}
	}
	return nil
}

func lineProductIDs(lines []entities.OrderLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, ln := range lines {
		if _, ok := seen[ln.ProductID]; ok {
			continue
		}
		seen[ln.ProductID] = struct{}{}
		ids = append(ids, ln.ProductID)
	}
	return ids
}

func productIndex(products []entities.Product) map[string]entities.Product {
	byID := make(map[string]entities.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}

// checkProductsExist сверяет число найденных товаров с числом
// уникальных productId в позициях.
func checkProductsExist(lines []entities.OrderLine, byID map[string]entities.Product) error {
	if len(byID) != len(lineProductIDs(lines)) {
		return entities.ErrUnknownProduct
	}
	return nil
}

// computeTotals считает суммы заказа по ценам из снимка каталога.
// Проверка остатка выполняется только для позиций из checkStock:
// при изменении заказа сток проверяется лишь у новых позиций.
func computeTotals(
	lines []entities.OrderLine,
	byID map[string]entities.Product,
	checkStock map[string]bool,
) (orderTotals, error) {
	totals := orderTotals{price: decimal.Zero}

	for _, ln := range lines {
		product, ok := byID[ln.ProductID]
		if !ok {
			return orderTotals{}, entities.ErrUnknownProduct
		}

		if checkStock[ln.ProductID] && ln.Quantity > product.Quantity {
			return orderTotals{}, &entities.InsufficientStockError{
				ProductName: product.Name,
				Requested:   ln.Quantity,
				Available:   product.Quantity,
			}
		}

		totals.price = totals.price.Add(product.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
		totals.quantity += ln.Quantity
	}
	return totals, nil
}

func stockCheckAll(lines []entities.OrderLine) map[string]bool {
	check := make(map[string]bool, len(lines))
	for _, ln := range lines {
		check[ln.ProductID] = true
	}
	return check
}

// amendAdditions применяет правило изменения заказа: у существующей
// позиции количество должно совпасть со старым, удалять позиции нельзя,
// новые позиции возвращаются как добавления.
func amendAdditions(old, updated []entities.OrderLine) ([]entities.OrderLine, error) {
	oldQty := make(map[string]int, len(old))
	for _, ln := range old {
		oldQty[ln.ProductID] = ln.Quantity
	}

	seen := make(map[string]struct{}, len(updated))
	added := make([]entities.OrderLine, 0)
	for _, ln := range updated {
		seen[ln.ProductID] = struct{}{}

		prev, existed := oldQty[ln.ProductID]
		if !existed {
			added = append(added, ln)
			continue
		}
		if prev != ln.Quantity {
			return nil, entities.ErrIllegalAmendment
		}
	}

	for productID := range oldQty {
		if _, ok := seen[productID]; !ok {
			return nil, entities.ErrIllegalAmendment
		}
	}
	return added, nil
}
