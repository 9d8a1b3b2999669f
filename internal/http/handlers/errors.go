package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/pizza-be/internal/auth"
	"github.com/hongminglow/pizza-be/internal/http/respond"
	"github.com/hongminglow/pizza-be/internal/middleware"
	"github.com/hongminglow/pizza-be/internal/models"
)

// Error is a client-facing failure. Only Message is written to the response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func errValidation(msg string) error    { return &Error{Status: http.StatusBadRequest, Message: msg} }
func errAuth(msg string) error          { return &Error{Status: http.StatusUnauthorized, Message: msg} }
func errAuthorization(msg string) error { return &Error{Status: http.StatusForbidden, Message: msg} }
func errNotFound(msg string) error      { return &Error{Status: http.StatusNotFound, Message: msg} }
func errConflict(msg string) error      { return &Error{Status: http.StatusConflict, Message: msg} }

// apiHandler is a handler that reports failures instead of writing them.
type apiHandler func(w http.ResponseWriter, r *http.Request) error

// base carries what every route group needs to wrap its handlers.
type base struct {
	authn *auth.Authenticator
	log   *zap.Logger
}

func (b base) public(fn apiHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			b.writeError(w, r, err)
		}
	}
}

func (b base) secured(fn apiHandler) http.HandlerFunc {
	return middleware.RequireAuth(b.authn, b.log, b.public(fn))
}

func (b base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		respond.Error(w, apiErr.Status, apiErr.Message)
		return
	}
	b.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.RequestIDFrom(r.Context())),
		zap.Error(err),
	)
	respond.Error(w, http.StatusInternalServerError, "internal server error")
}

const maxBodyBytes = 1 << 20

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errValidation("unable to read request body")
	}
	return body, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return errValidation("invalid JSON payload")
	}
	return nil
}

// pathID parses a numeric path wildcard. ok is false for anything that is not
// a positive integer.
func pathID(r *http.Request, name string) (id int64, ok bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// maxQueryInt caps numeric query parameters so page arithmetic cannot overflow.
const maxQueryInt = math.MaxInt32

// queryInt parses a non-negative query parameter, falling back to def when it
// is absent or malformed. Values above maxQueryInt are clamped.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && !strings.HasPrefix(numErr.Num, "-") {
			return maxQueryInt
		}
		return def
	}
	if v < 0 {
		return def
	}
	return min(v, maxQueryInt)
}

// currentUser is only valid inside secured handlers.
func currentUser(r *http.Request) models.User {
	user, _ := auth.UserFromContext(r.Context())
	return user
}
