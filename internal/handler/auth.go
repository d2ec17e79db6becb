package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shopmind/shop-api/pkg/utils"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthHandler struct {
	logger   *slog.Logger
	svc      AuthService
	validate *validator.Validate
}

func NewAuthHandler(logger *slog.Logger, svc AuthService) *AuthHandler {
	return &AuthHandler{
		logger:   logger.With(slog.String("handler", "auth")),
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *AuthHandler) Init(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
	})
}

// Login проверяет учётные данные и выдаёт токен.
// @Summary      Вход
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginRequest true "Учётные данные"
// @Success      200 {object} utils.SuccessResponse{data=LoginResponse}
// @Failure      400 {object} utils.ErrorResponse
// @Failure      401 {object} utils.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	signed, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, LoginResponse{Token: signed}, http.StatusOK)
}
