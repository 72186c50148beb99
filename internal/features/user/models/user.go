package models

import (
	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/features/access"
)

// Field names as stored in the users collection.
const (
	FieldEmail       = "email"
	FieldName        = "name"
	FieldRole        = "role"
	FieldPassword    = "password"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
	FieldLastLoginAt = "last_login_at"
)

// User is the stored account. Password holds the bcrypt hash.
type User struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	Password    string             `json:"password"`
	Name        string             `json:"name"`
	Role        access.Role        `json:"role"`
	CreatedAt   timeutil.Timestamp `json:"created_at"`
	UpdatedAt   timeutil.Timestamp `json:"updated_at"`
	LastLoginAt timeutil.Timestamp `json:"last_login_at"`
}

// UserResponse представляет публичную информацию о пользователе
// @Description Публичная информация о пользователе
type UserResponse struct {
	ID          string             `json:"id" example:"6f1c2a40-1d0e-4c8e-9a57-2f3b1c9d8e7a"`
	Email       string             `json:"email" example:"reader@example.com"`
	Name        string             `json:"name" example:"Jane Reader"`
	Role        access.Role        `json:"role" example:"viewer" enums:"owner,admin,contributor,student,viewer"`
	CreatedAt   timeutil.Timestamp `json:"created_at" swaggertype:"string" example:"2024-03-15T14:30:00.000000Z"`
	UpdatedAt   timeutil.Timestamp `json:"updated_at" swaggertype:"string" example:"2024-03-15T14:30:00.000000Z"`
	LastLoginAt timeutil.Timestamp `json:"last_login_at" swaggertype:"string" example:"2024-03-16T09:00:00.000000Z"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type CreateUserRequest struct {
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Name     string      `json:"name"`
	Role     access.Role `json:"role"`
}

// UpdateUserRequest carries only the fields being changed.
type UpdateUserRequest struct {
	Name     *string      `json:"name"`
	Password *string      `json:"password"`
	Role     *access.Role `json:"role"`
}

func (r UpdateUserRequest) Empty() bool {
	return r.Name == nil && r.Password == nil && r.Role == nil
}

type UsersResponse struct {
	Users  []*UserResponse `json:"users"`
	Limit  int             `json:"limit" example:"20"`
	Offset int             `json:"offset" example:"0"`
	Count  int             `json:"count" example:"2"`
}

type UserEnvelope struct {
	Message string        `json:"message,omitempty" example:"User updated successfully"`
	User    *UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message" example:"User deleted successfully"`
}
