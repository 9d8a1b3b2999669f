package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/pizza-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserUpdate lists the profile fields to change; nil fields are left alone.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// UserStore captures credential persistence needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	UpdateUser(ctx context.Context, id int64, update UserUpdate) (models.User, error)
}

// SessionStore tracks which issued tokens are still live. Tokens are keyed by
// their signature segment.
type SessionStore interface {
	AddSession(ctx context.Context, userID int64, signature string) error
	FindSession(ctx context.Context, signature string) (int64, error)
	RemoveSession(ctx context.Context, signature string) error
}

// FranchiseQuery pages through franchises. Name may contain '*' wildcards.
type FranchiseQuery struct {
	Page  int
	Limit int
	Name  string
}

// FranchiseStore persists franchises and their stores.
type FranchiseStore interface {
	ListFranchises(ctx context.Context, q FranchiseQuery) ([]models.Franchise, bool, error)
	ListUserFranchises(ctx context.Context, userID int64) ([]models.Franchise, error)
	GetFranchise(ctx context.Context, id int64) (models.Franchise, error)
	// CreateFranchise also grants a franchisee role to every admin.
	CreateFranchise(ctx context.Context, name string, adminIDs []int64) (models.Franchise, error)
	UpdateFranchise(ctx context.Context, id int64, name string) (models.Franchise, error)
	DeleteFranchise(ctx context.Context, id int64) error
	CreateStore(ctx context.Context, franchiseID int64, name string) (models.Store, error)
	DeleteStore(ctx context.Context, franchiseID, storeID int64) error
}

// MenuStore persists the menu.
type MenuStore interface {
	GetMenu(ctx context.Context) ([]models.MenuItem, error)
	AddMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
}

// OrderStore persists diner orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, order models.Order) (models.Order, error)
	// CompleteOrder records the factory outcome for a created order. Orders that
	// were already completed yield ErrAlreadyExists.
	CompleteOrder(ctx context.Context, id int64, status models.OrderStatus, factoryJWT, reportURL string) error
	ListOrders(ctx context.Context, dinerID int64, page int) ([]models.Order, bool, error)
}

// Store bundles every persistence concern the service needs.
type Store interface {
	UserStore
	SessionStore
	FranchiseStore
	MenuStore
	OrderStore
	Close()
}

// Pinger is implemented by backends that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OrdersPerPage bounds ListOrders results.
const OrdersPerPage = 10
