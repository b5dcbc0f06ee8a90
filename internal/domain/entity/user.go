package entity

import (
	"time"
)

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет участника платформы.
// Регистрация и пароли обслуживаются внешней auth-подсистемой;
// здесь хранится только то, что нужно для попыток и отчетов.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Role      string    `gorm:"size:20;not null;default:'user'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// IsAdmin проверяет административную роль
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
