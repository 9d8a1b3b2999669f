package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/pizza-be/internal/auth"
	"github.com/hongminglow/pizza-be/internal/http/respond"
	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/models/dto"
	"github.com/hongminglow/pizza-be/internal/storage"
)

// UserHandler serves profile endpoints.
type UserHandler struct {
	base
	users storage.UserStore
}

// NewUserHandler constructs the handler.
func NewUserHandler(users storage.UserStore, authn *auth.Authenticator, log *zap.Logger) *UserHandler {
	return &UserHandler{base: base{authn: authn, log: log}, users: users}
}

// Register attaches user routes to the mux.
func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/user/me", h.secured(h.handleMe))
	mux.HandleFunc("PUT /api/user/{userId}", h.secured(h.handleUpdate))
	mux.HandleFunc("GET /api/user", h.secured(h.handleList))
	mux.HandleFunc("GET /api/user/{$}", h.secured(h.handleList))
	mux.HandleFunc("DELETE /api/user/{userId}", h.secured(h.handleDelete))
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) error {
	respond.JSON(w, http.StatusOK, currentUser(r))
	return nil
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) error {
	caller := currentUser(r)
	targetID, ok := pathID(r, "userId")
	if caller.ID != targetID && !caller.IsAdmin() {
		return errAuthorization("unauthorized")
	}
	if !ok {
		return errNotFound("user not found")
	}

	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	update, err := buildUserUpdate(req)
	if err != nil {
		return err
	}

	updated, err := h.users.UpdateUser(r.Context(), targetID, update)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return errNotFound("user not found")
		case errors.Is(err, storage.ErrAlreadyExists):
			return errConflict("email already registered")
		}
		return err
	}

	token, err := h.authn.Issue(r.Context(), updated)
	if err != nil {
		return err
	}
	respond.JSON(w, http.StatusOK, dto.AuthResponse{User: updated, Token: token})
	return nil
}

func buildUserUpdate(req dto.UpdateUserRequest) (storage.UserUpdate, error) {
	var update storage.UserUpdate
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return update, errValidation("name must not be empty")
		}
		update.Name = &name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			return update, errValidation("email must not be empty")
		}
		update.Email = &email
	}
	if req.Password != nil {
		if *req.Password == "" {
			return update, errValidation("password must not be empty")
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return update, err
		}
		update.PasswordHash = &hash
	}
	return update, nil
}

// Listing and deleting users are published but not implemented; clients rely on
// the stub payloads.
func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) error {
	respond.JSON(w, http.StatusOK, dto.ListUsersResponse{Message: "not implemented", Users: []models.User{}, More: false})
	return nil
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) error {
	respond.Message(w, http.StatusOK, "not implemented")
	return nil
}
