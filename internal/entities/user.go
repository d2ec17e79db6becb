package entities

import "time"

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// User хранит bcrypt-хеш пароля в Password.
// Наружу хеш никогда не отдаётся, за это отвечает слой handler.
type User struct {
	ID        string
	Username  string
	Password  string
	Name      string
	LastName  string
	Email     string
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
