package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateSelf(t *testing.T) {
	api := newTestAPI(t)
	d := api.registerDiner("d", "d@jwt.com", "pw")

	rec := api.do(http.MethodPut, "/api/user/"+itoa(d.User.ID), d.Token, map[string]string{
		"name":     "pizza diner",
		"email":    "new@jwt.com",
		"password": "newpw",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[authBody](t, rec)
	assert.Equal(t, "pizza diner", updated.User.Name)
	assert.Equal(t, "new@jwt.com", updated.User.Email)
	assert.Regexp(t, jwtPattern, updated.Token)

	rec = api.do(http.MethodPut, "/api/auth", "", map[string]string{"email": "new@jwt.com", "password": "newpw"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodPut, "/api/auth", "", map[string]string{"email": "d@jwt.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateOtherUserForbidden(t *testing.T) {
	api := newTestAPI(t)
	d := api.registerDiner("d", "d@jwt.com", "pw")
	other := api.registerDiner("o", "o@jwt.com", "pw")

	rec := api.do(http.MethodPut, "/api/user/"+itoa(other.User.ID), d.Token, map[string]string{"name": "hijack"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unauthorized", message(t, rec))

	rec = api.do(http.MethodPut, "/api/user/abc", d.Token, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminUpdatesAnyUser(t *testing.T) {
	api := newTestAPI(t)
	admin := api.createAdmin()
	d := api.registerDiner("d", "d@jwt.com", "pw")

	rec := api.do(http.MethodPut, "/api/user/"+itoa(d.User.ID), admin.Token, map[string]string{"name": "renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "renamed", decode[authBody](t, rec).User.Name)

	rec = api.do(http.MethodPut, "/api/user/9999", admin.Token, map[string]string{"name": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", message(t, rec))
}

func TestUpdateUserConflictsAndBlanks(t *testing.T) {
	api := newTestAPI(t)
	d := api.registerDiner("d", "d@jwt.com", "pw")
	api.registerDiner("o", "o@jwt.com", "pw")

	rec := api.do(http.MethodPut, "/api/user/"+itoa(d.User.ID), d.Token, map[string]string{"email": "o@jwt.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPut, "/api/user/"+itoa(d.User.ID), d.Token, map[string]string{"name": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name must not be empty", message(t, rec))
}

func TestUpdateRequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPut, "/api/user/1", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserStubs(t *testing.T) {
	api := newTestAPI(t)
	d := api.registerDiner("d", "d@jwt.com", "pw")

	for _, path := range []string{"/api/user", "/api/user/"} {
		rec := api.do(http.MethodGet, path, d.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"not implemented","users":[],"more":false}`, rec.Body.String())
	}

	rec := api.do(http.MethodDelete, "/api/user/"+itoa(d.User.ID), d.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"not implemented"}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
