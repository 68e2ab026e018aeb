package domain

import (
	"net/mail"
	"strings"
)

// Role представляет роль учетной записи
type Role string

// Возможные роли пользователя
const (
	RoleAdmin  Role = "admin"  // Может создавать проекты
	RoleMember Role = "member" // Участник проектов
)

// IsValid проверяет, что роль входит в допустимый набор
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User представляет учетную запись пользователя
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"` // bcrypt-хеш, очищается перед отдачей наружу
	Role     Role   `json:"role"`
}

// IsAdmin возвращает true если пользователь администратор
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sanitized возвращает копию пользователя без хеша пароля
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clean := *u
	clean.Password = ""
	return &clean
}

// SanitizeUsers очищает пароли у списка пользователей
func SanitizeUsers(users []*User) []*User {
	result := make([]*User, 0, len(users))
	for _, u := range users {
		result = append(result, u.Sanitized())
	}
	return result
}

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Validate проверяет обязательные поля регистрации
func (in *RegisterInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return NewValidationError("email", "email is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return NewValidationError("email", "email is invalid")
	}
	if in.Password == "" {
		return NewValidationError("password", "password is required")
	}
	if !in.Role.IsValid() {
		return NewValidationError("role", "role must be one of: admin, member")
	}
	return nil
}
