package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/storage/memory"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *memory.Store) {
	t.Helper()
	store := memory.New()
	tm := NewTokenManager("secret", "pizza-test", time.Hour)
	return NewAuthenticator(tm, store, store), store
}

func TestAuthenticator_IssueAuthenticateRevoke(t *testing.T) {
	a, store := newTestAuthenticator(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, models.User{Name: "d", Email: "d@jwt.com"})
	require.NoError(t, err)

	token, err := a.Issue(ctx, user)
	require.NoError(t, err)

	got, err := a.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, a.Revoke(ctx, token))
	_, err = a.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticator_RevokeLeavesOtherSessions(t *testing.T) {
	a, store := newTestAuthenticator(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, models.User{Name: "d", Email: "d@jwt.com"})
	require.NoError(t, err)
	first, err := a.Issue(ctx, user)
	require.NoError(t, err)
	second, err := a.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, a.Revoke(ctx, first))
	_, err = a.Authenticate(ctx, second)
	assert.NoError(t, err)
}

func TestAuthenticator_RejectsUnregisteredToken(t *testing.T) {
	a, store := newTestAuthenticator(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, models.User{Name: "d", Email: "d@jwt.com"})
	require.NoError(t, err)
	token, err := a.tokens.Generate(user)
	require.NoError(t, err)

	_, err = a.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = a.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticator_RolesReadAtValidationTime(t *testing.T) {
	a, store := newTestAuthenticator(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, models.User{Name: "d", Email: "d@jwt.com"})
	require.NoError(t, err)
	token, err := a.Issue(ctx, user)
	require.NoError(t, err)

	f, err := store.CreateFranchise(ctx, "pizzaPocket", []int64{user.ID})
	require.NoError(t, err)

	got, err := a.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.True(t, got.IsFranchiseAdmin(f.ID))
}
