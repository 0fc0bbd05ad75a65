package users

import (
	"errors"
	"time"
)

// ErrNotFound оператор с таким telegram id не регистрировался (/start).
var ErrNotFound = errors.New("operator not found")

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// CanMutate может ли роль добавлять, менять и удалять материалы.
func (r Role) CanMutate() bool {
	return r == RoleAdmin || r == RoleEditor
}

type User struct {
	ID           int64
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) HasPassword() bool { return u.PasswordHash != "" }

type Telegram struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}
