package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopmind/shop-api/internal/entities"
	"github.com/shopmind/shop-api/internal/repo"
)

type UserRepo interface {
	Insert(ctx context.Context, u entities.User) (entities.User, error)
	GetByID(ctx context.Context, userID string) (entities.User, error)
	GetByUsername(ctx context.Context, username string) (entities.User, error)
	List(ctx context.Context, f repo.UserFilter) ([]entities.User, int, error)
	EmailTaken(ctx context.Context, email, excludeUsername string) (bool, error)
	UpdateProfile(ctx context.Context, username, name, lastName, email string) (entities.User, error)
	UpdatePassword(ctx context.Context, username, hashed string) error
	SetStatus(ctx context.Context, username string, status entities.UserStatus) (entities.User, error)
}

type UserService struct {
	logger *slog.Logger
	repo   UserRepo
}

func NewUserService(logger *slog.Logger, repo UserRepo) *UserService {
	return &UserService{
		logger: logger.With(slog.String("service", "user")),
		repo:   repo,
	}
}

type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Name            string
	LastName        string
	Email           string
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (entities.User, error) {
	if in.Username == "" || in.Password == "" || in.Name == "" ||
		in.LastName == "" || in.Email == "" || in.ConfirmPassword == "" {
		return entities.User{}, fmt.Errorf("%w: all fields are required", entities.ErrInvalidInput)
	}
	if in.Password != in.ConfirmPassword {
		return entities.User{}, fmt.Errorf("%w: passwords do not match", entities.ErrInvalidInput)
	}

	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return entities.User{}, entities.ErrUsernameTaken
	} else if !errors.Is(err, entities.ErrUserNotFound) {
		return entities.User{}, err
	}

	taken, err := s.repo.EmailTaken(ctx, in.Email, in.Username)
	if err != nil {
		return entities.User{}, err
	}
	if taken {
		return entities.User{}, entities.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.Insert(ctx, entities.User{
		ID:       uuid.NewString(),
		Username: in.Username,
		Password: string(hashed),
		Name:     in.Name,
		LastName: in.LastName,
		Email:    in.Email,
		Status:   entities.UserActive,
	})
	if err != nil {
		return entities.User{}, err
	}

	s.logger.DebugContext(ctx, "user registered", slog.String("username", created.Username))
	return created, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (entities.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) List(ctx context.Context, f repo.UserFilter) ([]entities.User, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	return s.repo.List(ctx, f)
}

// Update меняет имя, фамилию и email. Пароль этим путём не обновляется.
func (s *UserService) Update(ctx context.Context, username, name, lastName, email string) (entities.User, error) {
	if name == "" && lastName == "" && email == "" {
		return entities.User{}, fmt.Errorf(
			"%w: at least one field must be provided to update", entities.ErrInvalidInput)
	}

	if email != "" {
		taken, err := s.repo.EmailTaken(ctx, email, username)
		if err != nil {
			return entities.User{}, err
		}
		if taken {
			return entities.User{}, entities.ErrEmailTaken
		}
	}

	return s.repo.UpdateProfile(ctx, username, name, lastName, email)
}

func (s *UserService) ChangePassword(ctx context.Context, username, password, newPassword string) error {
	if password == "" || newPassword == "" {
		return fmt.Errorf("%w: all fields are required", entities.ErrInvalidInput)
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.Status != entities.UserActive {
		return entities.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return entities.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, username, string(hashed))
}

// Deactivate мягкое удаление: пользователь переводится в INACTIVE.
func (s *UserService) Deactivate(ctx context.Context, username string) (entities.User, error) {
	return s.repo.SetStatus(ctx, username, entities.UserInactive)
}
