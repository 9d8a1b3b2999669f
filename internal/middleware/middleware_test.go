package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hongminglow/pizza-be/internal/auth"
	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/storage/memory"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://pizza.example"}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/order/menu", nil)
	req.Header.Set("Origin", "https://PIZZA.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://PIZZA.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/order/menu", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/order", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "req-123", seen)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(0.001, 2, false)
	h := l.Wrap(okHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPut, "/api/auth", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimiterIgnoresForwardedForByDefault(t *testing.T) {
	h := NewRateLimiter(1, 1, false).Wrap(okHandler)

	codes := make(map[int]int)
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPut, "/api/auth", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h(rec, req)
		codes[rec.Code]++
	}
	assert.LessOrEqual(t, codes[http.StatusOK], 2)
	assert.GreaterOrEqual(t, codes[http.StatusTooManyRequests], 48)
}

func TestRateLimiterTrustedProxy(t *testing.T) {
	h := NewRateLimiter(0.001, 1, true).Wrap(okHandler)

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPut, "/api/auth", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1, 10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2"))
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(req))
	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(req))
	req.Header.Set("Authorization", "Bearer a.b.c")
	assert.Equal(t, "a.b.c", BearerToken(req))
	req.Header.Set("Authorization", "bearer a.b.c ")
	assert.Equal(t, "a.b.c", BearerToken(req))
}

func TestRequireAuth(t *testing.T) {
	store := memory.New()
	authenticator := auth.NewAuthenticator(auth.NewTokenManager("s", "pizza-test", time.Hour), store, store)
	user, err := store.CreateUser(t.Context(), models.User{Name: "d", Email: "d@jwt.com"})
	require.NoError(t, err)
	token, err := authenticator.Issue(t.Context(), user)
	require.NoError(t, err)

	var got models.User
	h := RequireAuth(authenticator, zap.NewNop(), func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/user/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"unauthorized"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, got.ID)
}
