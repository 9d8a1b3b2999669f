package auth

import (
	"context"

	"github.com/hongminglow/pizza-be/internal/models"
)

type contextKey struct{}

// WithUser stores the authenticated user and raw token on the context.
func WithUser(ctx context.Context, user models.User, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, principal{user: user, token: token})
}

type principal struct {
	user  models.User
	token string
}

// UserFromContext returns the user placed by the auth middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	p, ok := ctx.Value(contextKey{}).(principal)
	return p.user, ok
}

// TokenFromContext returns the bearer token the request authenticated with.
func TokenFromContext(ctx context.Context) string {
	p, _ := ctx.Value(contextKey{}).(principal)
	return p.token
}
