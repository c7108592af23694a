package core

import (
	"context"
	"time"
)

// Role values a user can hold.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents an authenticated staff member.
type User struct {
	ID           int        `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
	Role     string `json:"role" validate:"omitempty,oneof=admin staff"`
}

// UserService provides user lookup and credential checks.
type UserService interface {
	// Authenticate checks the password of an active user and stamps last_login.
	// Unknown emails, inactive users and wrong passwords all report Unauthorized.
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// GetUser returns a user by primary key.
	GetUser(ctx context.Context, id int) (*User, error)

	// CreateUser stores a new user with a bcrypt password hash.
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
}
