package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/shopmind/shop-api/internal/entities"
)

var userColumns = []string{
	"user_id", "username", "password", "name",
	"last_name", "email", "status", "created_at", "updated_at",
}

type UsersRepo struct {
	base
}

func NewUsersRepo(db *sqlx.DB) *UsersRepo {
	return &UsersRepo{base: newBase(db)}
}

type UserFilter struct {
	Status string
	Page   int
	Limit  int
}

func (r *UsersRepo) Insert(ctx context.Context, u entities.User) (entities.User, error) {
	query, args := r.qb.Insert("users").
		Columns("user_id", "username", "password", "name", "last_name", "email", "status").
		Values(u.ID, u.Username, u.Password, u.Name, u.LastName, u.Email, string(u.Status)).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		MustSql()

	var row User
	if err := r.getContext(ctx, &row, query, args...); err != nil {
		return entities.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return UserToEntity(row), nil
}

func (r *UsersRepo) GetByID(ctx context.Context, userID string) (entities.User, error) {
	return r.getOne(ctx, sq.Eq{"user_id": userID})
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (entities.User, error) {
	return r.getOne(ctx, sq.Eq{"username": username})
}

func (r *UsersRepo) getOne(ctx context.Context, cond sq.Eq) (entities.User, error) {
	query, args := r.qb.Select(userColumns...).
		From("users").
		Where(cond).
		MustSql()

	var row User
	err := r.getContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return UserToEntity(row), nil
}

func (r *UsersRepo) List(ctx context.Context, f UserFilter) ([]entities.User, int, error) {
	cond := sq.And{}
	if f.Status != "" {
		cond = append(cond, sq.Eq{"status": f.Status})
	}

	countQuery, countArgs := r.qb.Select("count(*)").
		From("users").
		Where(cond).
		MustSql()

	var total int
	if err := r.getContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query, args := r.qb.Select(userColumns...).
		From("users").
		Where(cond).
		OrderBy("created_at DESC", "user_id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64((f.Page - 1) * f.Limit)).
		MustSql()

	var rows []User
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select users: %w", err)
	}

	result := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		result = append(result, UserToEntity(row))
	}
	return result, total, nil
}

// EmailTaken проверяет, занят ли email другим пользователем.
func (r *UsersRepo) EmailTaken(ctx context.Context, email, excludeUsername string) (bool, error) {
	query, args := r.qb.Select("count(*)").
		From("users").
		Where(sq.Eq{"email": email}).
		Where(sq.NotEq{"username": excludeUsername}).
		MustSql()

	var count int
	if err := r.getContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, username string, name, lastName, email string) (entities.User, error) {
	q := r.qb.Update("users").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"username": username}).
		Suffix("RETURNING " + strings.Join(userColumns, ", "))
	if name != "" {
		q = q.Set("name", name)
	}
	if lastName != "" {
		q = q.Set("last_name", lastName)
	}
	if email != "" {
		q = q.Set("email", email)
	}
	query, args := q.MustSql()

	var row User
	err := r.getContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return UserToEntity(row), nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, username, hashed string) error {
	query, args := r.qb.Update("users").
		Set("password", hashed).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"username": username}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return entities.ErrUserNotFound
	}
	return nil
}

// SetStatus используется для мягкого удаления (перевода в INACTIVE).
func (r *UsersRepo) SetStatus(ctx context.Context, username string, status entities.UserStatus) (entities.User, error) {
	query, args := r.qb.Update("users").
		Set("status", string(status)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"username": username}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		MustSql()

	var row User
	err := r.getContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to set user status: %w", err)
	}
	return UserToEntity(row), nil
}
