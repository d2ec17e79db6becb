package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/pkg/token"
)

type TokenSigner interface {
	Sign(subject string, user token.UserClaims) (string, error)
}

type AuthService struct {
	logger *slog.Logger
	users  UserRepo
	tokens TokenSigner
}

func NewAuthService(logger *slog.Logger, users UserRepo, tokens TokenSigner) *AuthService {
	return &AuthService{
		logger: logger.With(slog.String("service", "auth")),
		users:  users,
		tokens: tokens,
	}
}

// Login проверяет пароль и выдаёт RS256-токен с sub = id пользователя.
// Несуществующий и неактивный пользователь неотличимы от неверного пароля.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, entities.ErrUserNotFound) {
		return "", entities.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if user.Status != entities.UserActive {
		return "", entities.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", entities.ErrInvalidCredentials
	}

	signed, err := s.tokens.Sign(user.ID, token.UserClaims{
		Username: user.Username,
		Name:     user.Name,
		LastName: user.LastName,
		Email:    user.Email,
		Status:   string(user.Status),
	})
	if err != nil {
		return "", err
	}

	s.logger.DebugContext(ctx, "user logged in", slog.String("username", username))
	return signed, nil
}
