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

const (
	defaultFranchiseLimit = 10
	maxFranchiseLimit     = 100
)

// FranchiseHandler serves franchise and store management.
type FranchiseHandler struct {
	base
	franchises storage.FranchiseStore
	users      storage.UserStore
}

// NewFranchiseHandler constructs the handler.
func NewFranchiseHandler(franchises storage.FranchiseStore, users storage.UserStore, authn *auth.Authenticator, log *zap.Logger) *FranchiseHandler {
	return &FranchiseHandler{base: base{authn: authn, log: log}, franchises: franchises, users: users}
}

// Register attaches franchise routes to the mux.
func (h *FranchiseHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/franchise", h.public(h.handleList))
	mux.HandleFunc("GET /api/franchise/{userId}", h.secured(h.handleListForUser))
	mux.HandleFunc("POST /api/franchise", h.secured(h.handleCreate))
	mux.HandleFunc("PUT /api/franchise/{franchiseId}", h.secured(h.handleUpdate))
	mux.HandleFunc("DELETE /api/franchise/{franchiseId}", h.secured(h.handleDelete))
	mux.HandleFunc("POST /api/franchise/{franchiseId}/store", h.secured(h.handleCreateStore))
	mux.HandleFunc("DELETE /api/franchise/{franchiseId}/store/{storeId}", h.secured(h.handleDeleteStore))
}

func (h *FranchiseHandler) handleList(w http.ResponseWriter, r *http.Request) error {
	limit := queryInt(r, "limit", defaultFranchiseLimit)
	if limit == 0 || limit > maxFranchiseLimit {
		limit = defaultFranchiseLimit
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "*"
	}

	franchises, more, err := h.franchises.ListFranchises(r.Context(), storage.FranchiseQuery{
		Page:  queryInt(r, "page", 0),
		Limit: limit,
		Name:  name,
	})
	if err != nil {
		return err
	}
	if franchises == nil {
		franchises = []models.Franchise{}
	}
	respond.JSON(w, http.StatusOK, dto.ListFranchisesResponse{Franchises: franchises, More: more})
	return nil
}

func (h *FranchiseHandler) handleListForUser(w http.ResponseWriter, r *http.Request) error {
	caller := currentUser(r)
	userID, ok := pathID(r, "userId")
	if !ok || (caller.ID != userID && !caller.IsAdmin()) {
		respond.JSON(w, http.StatusOK, []models.Franchise{})
		return nil
	}
	franchises, err := h.franchises.ListUserFranchises(r.Context(), userID)
	if err != nil {
		return err
	}
	if franchises == nil {
		franchises = []models.Franchise{}
	}
	respond.JSON(w, http.StatusOK, franchises)
	return nil
}

func (h *FranchiseHandler) handleCreate(w http.ResponseWriter, r *http.Request) error {
	if !currentUser(r).IsAdmin() {
		return errAuthorization("unable to create a franchise")
	}
	var req dto.CreateFranchiseRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return errValidation("franchise name is required")
	}

	adminIDs := make([]int64, 0, len(req.Admins))
	seen := make(map[int64]bool, len(req.Admins))
	for _, a := range req.Admins {
		u, err := h.users.FindByEmail(r.Context(), strings.TrimSpace(a.Email))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return errNotFound("unknown user for franchise admin provided")
			}
			return err
		}
		if !seen[u.ID] {
			seen[u.ID] = true
			adminIDs = append(adminIDs, u.ID)
		}
	}

	franchise, err := h.franchises.CreateFranchise(r.Context(), name, adminIDs)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return errConflict("franchise already exists")
		case errors.Is(err, storage.ErrNotFound):
			return errNotFound("unknown user for franchise admin provided")
		}
		return err
	}
	h.log.Info("franchise created", zap.Int64("franchise_id", franchise.ID), zap.String("name", franchise.Name))
	respond.JSON(w, http.StatusOK, franchise)
	return nil
}

func (h *FranchiseHandler) handleUpdate(w http.ResponseWriter, r *http.Request) error {
	if !currentUser(r).IsAdmin() {
		return errAuthorization("unable to update a franchise")
	}
	id, ok := pathID(r, "franchiseId")
	if !ok {
		return errNotFound("franchise not found")
	}
	var req dto.UpdateFranchiseRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return errValidation("franchise name is required")
	}

	franchise, err := h.franchises.UpdateFranchise(r.Context(), id, strings.TrimSpace(*req.Name))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return errNotFound("franchise not found")
		case errors.Is(err, storage.ErrAlreadyExists):
			return errConflict("franchise already exists")
		}
		return err
	}
	respond.JSON(w, http.StatusOK, dto.FranchiseResponse{Franchise: franchise})
	return nil
}

func (h *FranchiseHandler) handleDelete(w http.ResponseWriter, r *http.Request) error {
	if !currentUser(r).IsAdmin() {
		return errAuthorization("unable to delete a franchise")
	}
	id, ok := pathID(r, "franchiseId")
	if !ok {
		return errNotFound("franchise not found")
	}
	if err := h.franchises.DeleteFranchise(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errNotFound("franchise not found")
		}
		return err
	}
	h.log.Info("franchise deleted", zap.Int64("franchise_id", id))
	respond.Message(w, http.StatusOK, "franchise deleted")
	return nil
}

// Store routes check the caller before the ids so that anyone who cannot manage
// the franchise gets 403 regardless of what they asked for.
func (h *FranchiseHandler) handleCreateStore(w http.ResponseWriter, r *http.Request) error {
	franchiseID, ok := pathID(r, "franchiseId")
	if !currentUser(r).CanManageFranchise(franchiseID) {
		return errAuthorization("unable to create a store")
	}
	if !ok {
		return errNotFound("franchise not found")
	}
	var req dto.CreateStoreRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return errValidation("store name is required")
	}

	store, err := h.franchises.CreateStore(r.Context(), franchiseID, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errNotFound("franchise not found")
		}
		return err
	}
	respond.JSON(w, http.StatusOK, store)
	return nil
}

func (h *FranchiseHandler) handleDeleteStore(w http.ResponseWriter, r *http.Request) error {
	franchiseID, fok := pathID(r, "franchiseId")
	if !currentUser(r).CanManageFranchise(franchiseID) {
		return errAuthorization("unable to delete a store")
	}
	storeID, sok := pathID(r, "storeId")
	if !fok || !sok {
		return errNotFound("store not found")
	}
	if err := h.franchises.DeleteStore(r.Context(), franchiseID, storeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errNotFound("store not found")
		}
		return err
	}
	respond.Message(w, http.StatusOK, "store deleted")
	return nil
}
