package dto

import "github.com/hongminglow/pizza-be/internal/models"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register, login and profile updates.
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}
