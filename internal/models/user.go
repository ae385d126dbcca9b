package models

import "time"

// Role: роль пользователя.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User: учётная запись.
// PasswordHash никогда не уходит наружу.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	Role         Role      `json:"role"`
	Favorites    []string  `json:"favorites"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasFavorite сообщает, есть ли статья в избранном.
func (u *User) HasFavorite(articleID string) bool {
	return contains(u.Favorites, articleID)
}

// AsAuthor возвращает публичную проекцию пользователя.
func (u *User) AsAuthor() *Author {
	return &Author{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// Identity: аутентифицированный субъект запроса.
type Identity struct {
	UserID string
	Role   Role
}

// IsAdmin сообщает, обладает ли субъект ролью администратора.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// AuthResult: результат регистрации/входа.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
