package users

import (
	"time"

	"github.com/genuino/cotizaciones/internal/rbac"
)

// User represents a staff account for management.
type User struct {
	ID        int64     `json:"id"`
	Fullname  string    `json:"fullname"`
	Email     string    `json:"email"`
	Role      rbac.Role `json:"role"`
	RoleLabel string    `json:"role_label"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest is the payload of POST /api/users.
type CreateUserRequest struct {
	Fullname string `json:"fullname" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=4,max=72"`
	Role     string `json:"role" validate:"required"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// UpdateUserRequest is the payload of PUT /api/users/{id}. An empty password
// keeps the current one.
type UpdateUserRequest struct {
	Fullname string  `json:"fullname" validate:"required,max=150"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,max=72"`
	Role     string  `json:"role" validate:"required"`
	IsActive bool    `json:"is_active"`
}
