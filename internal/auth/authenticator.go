package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/storage"
)

// ErrUnauthorized is returned for missing, invalid, expired or revoked tokens.
var ErrUnauthorized = errors.New("unauthorized")

// Authenticator ties token signatures to live sessions and resolves the
// current user. It is safe for concurrent use.
type Authenticator struct {
	tokens   *TokenManager
	sessions storage.SessionStore
	users    storage.UserStore
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(tokens *TokenManager, sessions storage.SessionStore, users storage.UserStore) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions, users: users}
}

// Issue signs a token for user and registers it as a live session.
func (a *Authenticator) Issue(ctx context.Context, user models.User) (string, error) {
	token, err := a.tokens.Generate(user)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := a.sessions.AddSession(ctx, user.ID, Signature(token)); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user. Roles come from the store,
// not the token, so grants made after login take effect immediately.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrUnauthorized
	}
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return models.User{}, ErrUnauthorized
	}
	subject, err := claims.UserID()
	if err != nil {
		return models.User{}, ErrUnauthorized
	}

	owner, err := a.sessions.FindSession(ctx, Signature(token))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}
	if owner != subject {
		return models.User{}, ErrUnauthorized
	}

	user, err := a.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}
	return user, nil
}

// Revoke ends the session behind token.
func (a *Authenticator) Revoke(ctx context.Context, token string) error {
	return a.sessions.RemoveSession(ctx, Signature(token))
}
