// Package memory is an in-process storage.Store used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every record in maps guarded by a single RWMutex.
type Store struct {
	mu sync.RWMutex

	nextID     int64
	users      map[int64]models.User
	emails     map[string]int64
	sessions   map[string]int64
	franchises map[int64]models.Franchise
	menu       []models.MenuItem
	orders     map[int64]models.Order
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:      make(map[int64]models.User),
		emails:     make(map[string]int64),
		sessions:   make(map[string]int64),
		franchises: make(map[int64]models.Franchise),
		orders:     make(map[int64]models.Order),
	}
}

// Close is a no-op.
func (s *Store) Close() {}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneUser(u models.User) models.User {
	u.Roles = append([]models.Role(nil), u.Roles...)
	return u
}

func cloneFranchise(f models.Franchise) models.Franchise {
	f.Admins = append([]models.AdminRef{}, f.Admins...)
	f.Stores = append([]models.Store{}, f.Stores...)
	return f
}

// CreateUser inserts a new user; an empty role list defaults to diner.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(user.Email)
	if _, taken := s.emails[key]; taken {
		return models.User{}, storage.ErrAlreadyExists
	}
	user.ID = s.id()
	if len(user.Roles) == 0 {
		user.Roles = []models.Role{models.Diner()}
	}
	s.users[user.ID] = cloneUser(user)
	s.emails[key] = user.ID
	return cloneUser(user), nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

// FindByID fetches a user by id.
func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return cloneUser(u), nil
}

// UpdateUser applies the non-nil fields of update.
func (s *Store) UpdateUser(_ context.Context, id int64, update storage.UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if update.Email != nil {
		key := normalizeEmail(*update.Email)
		if owner, taken := s.emails[key]; taken && owner != id {
			return models.User{}, storage.ErrAlreadyExists
		}
		delete(s.emails, normalizeEmail(u.Email))
		s.emails[key] = id
		u.Email = *update.Email
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	s.users[id] = u
	return cloneUser(u), nil
}

// AddSession registers a token signature for a user.
func (s *Store) AddSession(_ context.Context, userID int64, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[signature] = userID
	return nil
}

// FindSession returns the user owning a live token signature.
func (s *Store) FindSession(_ context.Context, signature string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.sessions[signature]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return id, nil
}

// RemoveSession revokes a token signature.
func (s *Store) RemoveSession(_ context.Context, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, signature)
	return nil
}

func (s *Store) sortedFranchises() []models.Franchise {
	out := make([]models.Franchise, 0, len(s.franchises))
	for _, f := range s.franchises {
		out = append(out, cloneFranchise(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListFranchises pages through franchises whose name matches q.Name.
func (s *Store) ListFranchises(_ context.Context, q storage.FranchiseQuery) ([]models.Franchise, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pattern := strings.ToLower(q.Name)
	if pattern == "" {
		pattern = "*"
	}
	var matched []models.Franchise
	for _, f := range s.sortedFranchises() {
		if matchName(pattern, strings.ToLower(f.Name)) {
			matched = append(matched, f)
		}
	}

	page, more := pageOf(matched, q.Page, q.Limit)
	return page, more, nil
}

// matchName reports whether name matches pattern, where '*' matches any run of
// characters and every other character matches itself.
func matchName(pattern, name string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == name
	}
	if !strings.HasPrefix(name, parts[0]) {
		return false
	}
	rest := name[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	return strings.HasSuffix(rest, parts[len(parts)-1])
}

// ListUserFranchises returns franchises the user administers.
func (s *Store) ListUserFranchises(_ context.Context, userID int64) ([]models.Franchise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Franchise{}
	for _, f := range s.sortedFranchises() {
		for _, a := range f.Admins {
			if a.ID == userID {
				out = append(out, f)
				break
			}
		}
	}
	return out, nil
}

// GetFranchise fetches a franchise with its admins and stores.
func (s *Store) GetFranchise(_ context.Context, id int64) (models.Franchise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.franchises[id]
	if !ok {
		return models.Franchise{}, storage.ErrNotFound
	}
	return cloneFranchise(f), nil
}

// CreateFranchise inserts a franchise and grants each admin the franchisee role.
func (s *Store) CreateFranchise(_ context.Context, name string, adminIDs []int64) (models.Franchise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.franchises {
		if strings.EqualFold(f.Name, name) {
			return models.Franchise{}, storage.ErrAlreadyExists
		}
	}
	for _, uid := range adminIDs {
		if _, ok := s.users[uid]; !ok {
			return models.Franchise{}, storage.ErrNotFound
		}
	}

	f := models.Franchise{ID: s.id(), Name: name, Admins: []models.AdminRef{}, Stores: []models.Store{}}
	for _, uid := range adminIDs {
		u := s.users[uid]
		role := models.FranchiseAdmin(f.ID)
		if !u.HasRole(role) {
			u.Roles = append(u.Roles, role)
			s.users[uid] = u
		}
		f.Admins = append(f.Admins, models.AdminRef{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	s.franchises[f.ID] = f
	return cloneFranchise(f), nil
}

// UpdateFranchise renames a franchise.
func (s *Store) UpdateFranchise(_ context.Context, id int64, name string) (models.Franchise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.franchises[id]
	if !ok {
		return models.Franchise{}, storage.ErrNotFound
	}
	for _, other := range s.franchises {
		if other.ID != id && strings.EqualFold(other.Name, name) {
			return models.Franchise{}, storage.ErrAlreadyExists
		}
	}
	f.Name = name
	s.franchises[id] = f
	return cloneFranchise(f), nil
}

// DeleteFranchise removes a franchise, its stores and the franchisee roles scoped to it.
func (s *Store) DeleteFranchise(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.franchises[id]
	if !ok {
		return storage.ErrNotFound
	}
	for _, a := range f.Admins {
		u, ok := s.users[a.ID]
		if !ok {
			continue
		}
		kept := u.Roles[:0:0]
		for _, r := range u.Roles {
			if r != models.FranchiseAdmin(id) {
				kept = append(kept, r)
			}
		}
		u.Roles = kept
		s.users[a.ID] = u
	}
	delete(s.franchises, id)
	return nil
}

// CreateStore adds a store to an existing franchise.
func (s *Store) CreateStore(_ context.Context, franchiseID int64, name string) (models.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.franchises[franchiseID]
	if !ok {
		return models.Store{}, storage.ErrNotFound
	}
	st := models.Store{ID: s.id(), FranchiseID: franchiseID, Name: name}
	f.Stores = append(append([]models.Store{}, f.Stores...), st)
	s.franchises[franchiseID] = f
	return st, nil
}

// DeleteStore removes a store from its franchise.
func (s *Store) DeleteStore(_ context.Context, franchiseID, storeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.franchises[franchiseID]
	if !ok || !f.HasStore(storeID) {
		return storage.ErrNotFound
	}
	kept := make([]models.Store, 0, len(f.Stores)-1)
	for _, st := range f.Stores {
		if st.ID != storeID {
			kept = append(kept, st)
		}
	}
	f.Stores = kept
	s.franchises[franchiseID] = f
	return nil
}

// GetMenu returns the menu in insertion order.
func (s *Store) GetMenu(_ context.Context) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MenuItem{}, s.menu...), nil
}

// AddMenuItem appends an item to the menu.
func (s *Store) AddMenuItem(_ context.Context, item models.MenuItem) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.id()
	s.menu = append(s.menu, item)
	return item, nil
}

// CreateOrder stores a new order in the created state.
func (s *Store) CreateOrder(_ context.Context, order models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.franchises[order.FranchiseID]
	if !ok || !f.HasStore(order.StoreID) {
		return models.Order{}, storage.ErrNotFound
	}
	order.ID = s.id()
	order.Status = models.OrderCreated
	if order.Date.IsZero() {
		order.Date = time.Now().UTC()
	}
	items := make([]models.OrderItem, len(order.Items))
	for i, it := range order.Items {
		it.ID = s.id()
		items[i] = it
	}
	order.Items = items
	s.orders[order.ID] = order
	return order, nil
}

// CompleteOrder records the factory outcome. Fulfilled orders are never changed again.
func (s *Store) CompleteOrder(_ context.Context, id int64, status models.OrderStatus, factoryJWT, reportURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return storage.ErrNotFound
	}
	if o.Status != models.OrderCreated {
		return storage.ErrAlreadyExists
	}
	o.Status = status
	o.FactoryJWT = factoryJWT
	o.ReportURL = reportURL
	s.orders[id] = o
	if status == models.OrderFulfilled {
		f := s.franchises[o.FranchiseID]
		for i := range f.Stores {
			if f.Stores[i].ID == o.StoreID {
				f.Stores[i].TotalRevenue += o.Total()
			}
		}
	}
	return nil
}

// ListOrders pages through a diner's orders, newest first.
func (s *Store) ListOrders(_ context.Context, dinerID int64, page int) ([]models.Order, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var mine []models.Order
	for _, o := range s.orders {
		if o.DinerID == dinerID {
			o.Items = append([]models.OrderItem{}, o.Items...)
			mine = append(mine, o)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })

	if page < 1 {
		page = 1
	}
	out, more := pageOf(mine, page-1, storage.OrdersPerPage)
	return out, more, nil
}

// pageOf returns the zero-based page of items. Pages past the end, including
// ones whose offset would overflow, are empty.
func pageOf[T any](items []T, page, size int) ([]T, bool) {
	if page < 0 || size <= 0 || page > len(items)/size {
		return []T{}, false
	}
	start := page * size
	if start >= len(items) {
		return []T{}, false
	}
	end := min(start+size, len(items))
	return items[start:end], end < len(items)
}
