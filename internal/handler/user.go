package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/internal/repo"
	"github.com/shopmind/shop-api/internal/service"
	"github.com/shopmind/shop-api/pkg/utils"
)

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (entities.User, error)
	GetByUsername(ctx context.Context, username string) (entities.User, error)
	List(ctx context.Context, f repo.UserFilter) ([]entities.User, int, error)
	Update(ctx context.Context, username, name, lastName, email string) (entities.User, error)
	ChangePassword(ctx context.Context, username, password, newPassword string) error
	Deactivate(ctx context.Context, username string) (entities.User, error)
}

type UserHandler struct {
	logger   *slog.Logger
	svc      UserService
	auth     func(next http.Handler) http.Handler
	validate *validator.Validate
}

func NewUserHandler(logger *slog.Logger, svc UserService, auth func(next http.Handler) http.Handler) *UserHandler {
	return &UserHandler{
		logger:   logger.With(slog.String("handler", "user")),
		svc:      svc,
		auth:     auth,
		validate: validator.New(),
	}
}

func (h *UserHandler) Init(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Get("/", h.List)
			r.Get("/{username}", h.GetByUsername)
			r.Put("/{username}", h.Update)
			r.Put("/password/{username}", h.ChangePassword)
			r.Delete("/{username}", h.Deactivate)
		})
	})
}

// Register регистрирует нового пользователя.
// @Summary      Регистрация
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body RegisterRequest true "Данные пользователя"
// @Success      201 {object} utils.SuccessResponse{data=UserResponse}
// @Failure      400 {object} utils.ErrorResponse
// @Failure      409 {object} utils.ErrorResponse "Имя пользователя или email заняты"
// @Router       /users [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	user, err := h.svc.Register(ctx, service.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Name:            req.Name,
		LastName:        req.LastName,
		Email:           req.Email,
	})
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, userToResponse(user), http.StatusCreated)
}

// List возвращает страницу пользователей.
// @Summary      Список пользователей
// @Tags         users
// @Produce      json
// @Param        page query int false "Номер страницы"
// @Param        limit query int false "Размер страницы"
// @Success      200 {object} utils.SuccessResponse{data=PageResponse}
// @Failure      401 {object} utils.ErrorResponse
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, limit := pageParams(r)
	users, total, err := h.svc.List(ctx, repo.UserFilter{Page: page, Limit: limit})
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, newPageResponse(usersToResponse(users), total, page, limit), http.StatusOK)
}

// GetByUsername возвращает пользователя по имени.
// @Summary      Пользователь по имени
// @Tags         users
// @Produce      json
// @Param        username path string true "Имя пользователя"
// @Success      200 {object} utils.SuccessResponse{data=UserResponse}
// @Failure      404 {object} utils.ErrorResponse
// @Security     BearerAuth
// @Router       /users/{username} [get]
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.svc.GetByUsername(ctx, chi.URLParam(r, "username"))
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, userToResponse(user), http.StatusOK)
}

// Update меняет профиль пользователя.
// @Summary      Обновить профиль
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        username path string true "Имя пользователя"
// @Param        input body UpdateUserRequest true "Новые значения"
// @Success      200 {object} utils.SuccessResponse{data=UserResponse}
// @Failure      404 {object} utils.ErrorResponse
// @Failure      409 {object} utils.ErrorResponse "Email занят"
// @Security     BearerAuth
// @Router       /users/{username} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateUserRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	user, err := h.svc.Update(ctx, chi.URLParam(r, "username"), req.Name, req.LastName, req.Email)
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, userToResponse(user), http.StatusOK)
}

// ChangePassword меняет пароль после проверки текущего.
// @Summary      Сменить пароль
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        username path string true "Имя пользователя"
// @Param        input body ChangePasswordRequest true "Текущий и новый пароли"
// @Success      200 {object} utils.SuccessResponse
// @Failure      401 {object} utils.ErrorResponse
// @Failure      404 {object} utils.ErrorResponse
// @Security     BearerAuth
// @Router       /users/password/{username} [put]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChangePasswordRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	if err := h.svc.ChangePassword(ctx, chi.URLParam(r, "username"), req.Password, req.NewPassword); err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, "password updated", http.StatusOK)
}

// Deactivate мягкое удаление пользователя.
// @Summary      Деактивировать пользователя
// @Tags         users
// @Produce      json
// @Param        username path string true "Имя пользователя"
// @Success      200 {object} utils.SuccessResponse{data=UserResponse}
// @Failure      404 {object} utils.ErrorResponse
// @Security     BearerAuth
// @Router       /users/{username} [delete]
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.svc.Deactivate(ctx, chi.URLParam(r, "username"))
	if err != nil {
		writeDomainError(ctx, w, h.logger, err)
		return
	}
	utils.WriteData(w, userToResponse(user), http.StatusOK)
}
