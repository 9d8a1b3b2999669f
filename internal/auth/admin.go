package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/storage"
)

// EnsureAdmin creates an admin account with the given credentials unless a
// user with that email already exists. created reports which happened.
func EnsureAdmin(ctx context.Context, users storage.UserStore, name, email, password string) (user models.User, created bool, err error) {
	existing, err := users.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, false, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, false, fmt.Errorf("hash admin password: %w", err)
	}
	user, err = users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		Roles:        []models.Role{models.Admin()},
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, false, fmt.Errorf("create admin: %w", err)
	}
	return user, true, nil
}
