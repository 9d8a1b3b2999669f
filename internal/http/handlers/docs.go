package handlers

import (
	"net/http"

	"github.com/hongminglow/pizza-be/internal/http/respond"
)

// EndpointDoc describes one public route.
type EndpointDoc struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	RequiresAuth bool   `json:"requiresAuth"`
	Description  string `json:"description"`
}

var endpoints = []EndpointDoc{
	{http.MethodPost, "/api/auth", false, "Register a new user"},
	{http.MethodPut, "/api/auth", false, "Login existing user"},
	{http.MethodDelete, "/api/auth", true, "Logout a user"},
	{http.MethodGet, "/api/auth/current", true, "Get the authenticated user"},
	{http.MethodGet, "/api/user/me", true, "Get the authenticated user"},
	{http.MethodPut, "/api/user/:userId", true, "Update user"},
	{http.MethodGet, "/api/user", true, "List users (not implemented)"},
	{http.MethodDelete, "/api/user/:userId", true, "Delete user (not implemented)"},
	{http.MethodGet, "/api/franchise", false, "List franchises; supports page, limit and name filters"},
	{http.MethodGet, "/api/franchise/:userId", true, "List a user's franchises"},
	{http.MethodPost, "/api/franchise", true, "Create a franchise"},
	{http.MethodPut, "/api/franchise/:franchiseId", true, "Rename a franchise"},
	{http.MethodDelete, "/api/franchise/:franchiseId", true, "Delete a franchise"},
	{http.MethodPost, "/api/franchise/:franchiseId/store", true, "Create a franchise store"},
	{http.MethodDelete, "/api/franchise/:franchiseId/store/:storeId", true, "Delete a store"},
	{http.MethodGet, "/api/order/menu", false, "Get the pizza menu"},
	{http.MethodPut, "/api/order/menu", true, "Add an item to the menu"},
	{http.MethodGet, "/api/order", true, "Get the diner's orders"},
	{http.MethodPost, "/api/order", true, "Create an order and send it to the factory"},
}

// DocsHandler serves the API index and the root greeting.
type DocsHandler struct {
	version    string
	factoryURL string
}

// NewDocsHandler constructs the handler.
func NewDocsHandler(version, factoryURL string) *DocsHandler {
	return &DocsHandler{version: version, factoryURL: factoryURL}
}

// Register wires the docs, root and fallback routes.
func (h *DocsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/docs", h.handleDocs)
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("/", h.handleUnknown)
}

func (h *DocsHandler) handleDocs(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"version":   h.version,
		"endpoints": endpoints,
		"config":    map[string]string{"factory": h.factoryURL},
	})
}

func (h *DocsHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"message": "welcome to JWT Pizza",
		"version": h.version,
	})
}

func (h *DocsHandler) handleUnknown(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusNotFound, "unknown endpoint")
}
