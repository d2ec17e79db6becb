package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/pkg/utils"
)

// writeDomainError переводит ошибки доменного слоя в конверт
// {success:false, message} с нужным HTTP-кодом. Всё неизвестное уходит в 500,
// текст таких ошибок наружу не отдаётся.
func writeDomainError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, entities.ErrInvalidInput),
		errors.Is(err, entities.ErrUnknownProduct),
		errors.Is(err, entities.ErrIllegalAmendment):
		utils.WriteError(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, entities.ErrInvalidCredentials):
		utils.WriteError(w, err.Error(), http.StatusUnauthorized)

	case errors.Is(err, entities.ErrOrderNotFound),
		errors.Is(err, entities.ErrProductNotFound),
		errors.Is(err, entities.ErrUserNotFound):
		utils.WriteError(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, entities.ErrIllegalTransition),
		entities.IsInsufficientStock(err),
		errors.Is(err, entities.ErrUsernameTaken),
		errors.Is(err, entities.ErrEmailTaken),
		errors.Is(err, entities.ErrProductNameTaken):
		utils.WriteError(w, err.Error(), http.StatusConflict)

	default:
		logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
