package models

import (
	"time"

	usermodels "storyfeed-backend/internal/features/user/models"
)

// Session maps an opaque bearer token to a user.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"reader@example.com"`
	Password string `json:"password" binding:"required" example:"correct horse battery"`
}

// LoginResponse is returned by login and registration.
type LoginResponse struct {
	Token     string                   `json:"token" example:"0b6f4c7e-3a8e-4f0f-9d5b-1c0e2f7a9b31"`
	ExpiresAt time.Time                `json:"expires_at"`
	User      *usermodels.UserResponse `json:"user"`
}
