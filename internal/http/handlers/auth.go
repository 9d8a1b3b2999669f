package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/pizza-be/internal/auth"
	"github.com/hongminglow/pizza-be/internal/http/respond"
	"github.com/hongminglow/pizza-be/internal/metrics"
	"github.com/hongminglow/pizza-be/internal/middleware"
	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/models/dto"
	"github.com/hongminglow/pizza-be/internal/storage"
)

// AuthHandler owns register/login/logout endpoints.
type AuthHandler struct {
	base
	users   storage.UserStore
	limiter *middleware.RateLimiter
	metrics *metrics.Metrics
}

// NewAuthHandler constructs the handler. limiter and m may be nil.
func NewAuthHandler(users storage.UserStore, authn *auth.Authenticator, limiter *middleware.RateLimiter, m *metrics.Metrics, log *zap.Logger) *AuthHandler {
	return &AuthHandler{base: base{authn: authn, log: log}, users: users, limiter: limiter, metrics: m}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	login := h.public(h.handleLogin)
	if h.limiter != nil {
		login = h.limiter.Wrap(login)
	}
	mux.HandleFunc("POST /api/auth", h.public(h.handleRegister))
	mux.HandleFunc("PUT /api/auth", login)
	mux.HandleFunc("DELETE /api/auth", h.secured(h.handleLogout))
	mux.HandleFunc("GET /api/auth/current", h.secured(h.handleCurrent))
}

func (h *AuthHandler) record(event string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	h.metrics.AuthEvents.WithLabelValues(event, outcome).Inc()
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() { h.record("register", err) }()

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	name, email := strings.TrimSpace(req.Name), strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return errValidation("name, email, and password are required")
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	created, err := h.users.CreateUser(r.Context(), models.User{
		Name:         name,
		Email:        email,
		Roles:        []models.Role{models.Diner()},
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return errConflict("email already registered")
		}
		return err
	}

	token, err := h.authn.Issue(r.Context(), created)
	if err != nil {
		return err
	}
	respond.JSON(w, http.StatusOK, dto.AuthResponse{User: created, Token: token})
	return nil
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() { h.record("login", err) }()

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	user, err := h.users.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errAuth("unknown user")
		}
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return errAuth("unknown user")
	}

	token, err := h.authn.Issue(r.Context(), user)
	if err != nil {
		return err
	}
	respond.JSON(w, http.StatusOK, dto.AuthResponse{User: user, Token: token})
	return nil
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) (err error) {
	defer func() { h.record("logout", err) }()

	if err := h.authn.Revoke(r.Context(), auth.TokenFromContext(r.Context())); err != nil {
		return err
	}
	respond.Message(w, http.StatusOK, "logout successful")
	return nil
}

func (h *AuthHandler) handleCurrent(w http.ResponseWriter, r *http.Request) error {
	respond.JSON(w, http.StatusOK, currentUser(r))
	return nil
}
