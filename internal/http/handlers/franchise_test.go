package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/pizza-be/internal/models"
)

type franchiseList struct {
	Franchises []models.Franchise `json:"franchises"`
	More       bool               `json:"more"`
}

func TestListFranchisesPublic(t *testing.T) {
	api := newTestAPI(t)
	admin := api.createAdmin()

	rec := api.do(http.MethodGet, "/api/franchise", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"franchises":[],"more":false}`, rec.Body.String())

	for _, name := range []string{"pizzaPocket", "pizzaPalace", "slice"} {
		rec = api.do(http.MethodPost, "/api/franchise", admin.Token, map[string]any{"name": name})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = api.do(http.MethodGet, "/api/franchise?page=0&limit=2&name=pizza*", "", nil)
	page := decode[franchiseList](t, rec)
	assert.Len(t, page.Franchises, 2)
	assert.False(t, page.More)

	rec = api.do(http.MethodGet, "/api/franchise?page=0&limit=2", "", nil)
	page = decode[franchiseList](t, rec)
	assert.Len(t, page.Franchises, 2)
	assert.True(t, page.More)

	rec = api.do(http.MethodGet, "/api/franchise?page=1&limit=2", "", nil)
	page = decode[franchiseList](t, rec)
	require.Len(t, page.Franchises, 1)
	assert.Equal(t, "slice", page.Franchises[0].Name)
}

func TestCreateFranchise(t *testing.T) {
	api := newTestAPI(t)
	admin := api.createAdmin()
	owner := api.registerDiner("owner", "f@jwt.com", "pw")

	rec := api.do(http.MethodPost, "/api/franchise", admin.Token, map[string]any{
		"name":   "pizzaPocket",
		"admins": []map[string]string{{"email": "f@jwt.com"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	f := decode[models.Franchise](t, rec)
	assert.Equal(t, "pizzaPocket", f.Name)
	require.Len(t, f.Admins, 1)
	assert.Equal(t, owner.User.ID, f.Admins[0].ID)

	// The franchisee role is read fresh on the next request.
	rec = api.do(http.MethodGet, "/api/user/me", owner.Token, nil)
	me := decode[models.User](t, rec)
	assert.True(t, me.IsFranchiseAdmin(f.ID))
	assert.Contains(t, rec.Body.String(), `{"role":"franchisee","objectId":`+itoa(f.ID)+`}`)

	rec = api.do(http.MethodGet, "/api/franchise/"+itoa(owner.User.ID), owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]models.Franchise](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, f.ID, mine[0].ID)

	rec = api.do(http.MethodPost, "/api/franchise", admin.Token, map[string]any{"name": "PIZZAPOCKET"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "franchise already exists", message(t, rec))

	rec = api.do(http.MethodPost, "/api/franchise", admin.Token, map[string]any{
		"name":   "other",
		"admins": []map[string]string{{"email": "ghost@jwt.com"}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown user for franchise admin provided", message(t, rec))
}

func TestCreateFranchiseForbiddenForDiner(t *testing.T) {
	api := newTestAPI(t)
	d := api.registerDiner("d", "d@jwt.com", "pw")

	rec := api.do(http.MethodPost, "/api/franchise", d.Token, map[string]any{"name": "mine"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unable to create a franchise", message(t, rec))
}

func TestListUserFranchisesOfOthers(t *testing.T) {
	api := newTestAPI(t)
	admin := api.createAdmin()
	owner := api.registerDiner("owner", "f@jwt.com", "pw")
	snoop := api.registerDiner("snoop", "s@jwt.com", "pw")
	api.seedStore(admin.Token, "f@jwt.com")

	rec := api.do(http.MethodGet, "/api/franchise/"+itoa(owner.User.ID), snoop.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/franchise/"+itoa(owner.User.ID), admin.Token, nil)
	assert.Len(t, decode[[]models.Franchise](t, rec), 1)
}

func TestUpdateFranchise(t *testing.T) {
	api := newTestAPI(t)
	admin := api.createAdmin()
	d := api.registerDiner("d", "d@jwt.com", "pw")
	f, _ := api.seedStore(admin.Token, "")

	rec := api.do(http.MethodPut, "/api/franchise/"+itoa(f.ID), admin.Token, map[string]string{"name": "renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Franchise models.Franchise `json:"franchise"`
	}](t, rec)
	assert.Equal(t, "renamed", body.Franchise.Name)
	assert.Len(t, body.Franchise.Stores, 1)

	rec = api.do(http.MethodPut, "/api/franchise/9999", admin.Token, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "franchise not found", message(t, rec))

	rec = api.do(http.MethodPut, "/api/franchise/"+itoa(f.ID), d.Token, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unable to update a franchise", message(t, rec))
}

func TestDeleteFranchise(t *testing.T) {
	api := newTestAPI(t)
	admin := api.createAdmin()
	owner := api.registerDiner("owner", "f@jwt.com", "pw")
	f, _ := api.seedStore(admin.Token, "f@jwt.com")

	rec := api.do(http.MethodDelete, "/api/franchise/"+itoa(f.ID), owner.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unable to delete a franchise", message(t, rec))

	rec = api.do(http.MethodDelete, "/api/franchise/"+itoa(f.ID), admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "franchise deleted", message(t, rec))

	rec = api.do(http.MethodDelete, "/api/franchise/"+itoa(f.ID), admin.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/api/user/me", owner.Token, nil)
	assert.False(t, decode[models.User](t, rec).IsFranchiseAdmin(f.ID))
}

func TestStoreLifecycle(t *testing.T) {
	api := newTestAPI(t)
	admin := api.createAdmin()
	owner := api.registerDiner("owner", "f@jwt.com", "pw")
	f, _ := api.seedStore(admin.Token, "f@jwt.com")

	rec := api.do(http.MethodPost, "/api/franchise/"+itoa(f.ID)+"/store", owner.Token, map[string]string{"name": "Provo"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	store := decode[models.Store](t, rec)
	assert.Equal(t, "Provo", store.Name)
	assert.Equal(t, f.ID, store.FranchiseID)

	rec = api.do(http.MethodDelete, "/api/franchise/"+itoa(f.ID)+"/store/"+itoa(store.ID), owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "store deleted", message(t, rec))

	rec = api.do(http.MethodDelete, "/api/franchise/"+itoa(f.ID)+"/store/"+itoa(store.ID), owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "store not found", message(t, rec))

	rec = api.do(http.MethodPost, "/api/franchise/9999/store", admin.Token, map[string]string{"name": "nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "franchise not found", message(t, rec))
}

func TestStoreForbiddenForOutsiders(t *testing.T) {
	api := newTestAPI(t)
	admin := api.createAdmin()
	d := api.registerDiner("d", "d@jwt.com", "pw")
	f, store := api.seedStore(admin.Token, "")

	rec := api.do(http.MethodPost, "/api/franchise/"+itoa(f.ID)+"/store", d.Token, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unable to create a store", message(t, rec))

	rec = api.do(http.MethodDelete, "/api/franchise/"+itoa(f.ID)+"/store/"+itoa(store.ID), d.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unable to delete a store", message(t, rec))

	rec = api.do(http.MethodDelete, "/api/franchise/abc/store/xyz", d.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListFranchisesPagingBounds(t *testing.T) {
	api := newTestAPI(t)
	admin := api.createAdmin()
	for i := 0; i < 12; i++ {
		rec := api.do(http.MethodPost, "/api/franchise", admin.Token, map[string]any{"name": "franchise" + itoa(int64(i))})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	cases := []struct {
		query string
		want  int
		more  bool
	}{
		{"?page=1000000000000000000", 0, false},
		{"?page=99999999999999999999999", 0, false},
		{"?page=1000000000000000000&limit=100", 0, false},
		{"?limit=1000", 10, true},
		{"?limit=-5", 10, true},
		{"?limit=abc", 10, true},
		{"?page=-1", 10, true},
		{"?page=abc", 10, true},
		{"?page=1", 2, false},
		{"?page=5&limit=5", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			rec := api.do(http.MethodGet, "/api/franchise"+tc.query, "", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			page := decode[franchiseList](t, rec)
			assert.Len(t, page.Franchises, tc.want)
			assert.Equal(t, tc.more, page.More)
		})
	}
}

func TestListFranchisesNamesWithSlashes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.createAdmin()
	for _, name := range []string{"NY/NJ Pizza", "Plain", "[odd] name"} {
		rec := api.do(http.MethodPost, "/api/franchise", admin.Token, map[string]any{"name": name})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := api.do(http.MethodGet, "/api/franchise", "", nil)
	assert.Len(t, decode[franchiseList](t, rec).Franchises, 3)

	rec = api.do(http.MethodGet, "/api/franchise?name=ny/*", "", nil)
	page := decode[franchiseList](t, rec)
	require.Len(t, page.Franchises, 1)
	assert.Equal(t, "NY/NJ Pizza", page.Franchises[0].Name)

	rec = api.do(http.MethodGet, "/api/franchise?name=%5Bodd*", "", nil)
	assert.Len(t, decode[franchiseList](t, rec).Franchises, 1)
}
