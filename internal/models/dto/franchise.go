package dto

import "github.com/hongminglow/pizza-be/internal/models"

type ListFranchisesResponse struct {
	Franchises []models.Franchise `json:"franchises"`
	More       bool               `json:"more"`
}

type AdminEmail struct {
	Email string `json:"email"`
}

type CreateFranchiseRequest struct {
	Name   string       `json:"name"`
	Admins []AdminEmail `json:"admins"`
}

type UpdateFranchiseRequest struct {
	Name *string `json:"name"`
}

type FranchiseResponse struct {
	Franchise models.Franchise `json:"franchise"`
}

type CreateStoreRequest struct {
	Name string `json:"name"`
}
