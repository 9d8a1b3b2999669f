package dto

import "github.com/hongminglow/pizza-be/internal/models"

// UpdateUserRequest carries any subset of the mutable profile fields.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type ListUsersResponse struct {
	Message string        `json:"message"`
	Users   []models.User `json:"users"`
	More    bool          `json:"more"`
}
