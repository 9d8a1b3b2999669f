package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/storage"
	"github.com/jackc/pgx/v5"
)

// ListFranchises pages through franchises whose name matches q.Name ('*' is a wildcard).
func (s *Store) ListFranchises(ctx context.Context, q storage.FranchiseQuery) ([]models.Franchise, bool, error) {
	if q.Page < 0 || q.Limit <= 0 || q.Page > maxPage {
		return []models.Franchise{}, false, nil
	}
	pattern := q.Name
	if pattern == "" {
		pattern = "*"
	}
	pattern = likePattern(pattern)

	const query = `SELECT id FROM franchises WHERE name ILIKE $1 ORDER BY id LIMIT $2 OFFSET $3;`
	rows, err := s.pool.Query(ctx, query, pattern, q.Limit+1, int64(q.Page)*int64(q.Limit))
	if err != nil {
		return nil, false, fmt.Errorf("list franchises: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, false, fmt.Errorf("list franchises: %w", err)
	}

	more := len(ids) > q.Limit
	if more {
		ids = ids[:q.Limit]
	}
	out, err := s.loadFranchises(ctx, ids)
	return out, more, err
}

// maxPage bounds page numbers so OFFSET stays positive.
const maxPage = math.MaxInt32

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `%`)

// likePattern turns a '*' wildcard pattern into an ILIKE pattern in which
// every other character is literal.
func likePattern(name string) string {
	return likeEscaper.Replace(name)
}

// ListUserFranchises returns franchises the user administers.
func (s *Store) ListUserFranchises(ctx context.Context, userID int64) ([]models.Franchise, error) {
	const query = `SELECT object_id FROM user_roles WHERE user_id = $1 AND role = $2 ORDER BY object_id;`
	rows, err := s.pool.Query(ctx, query, userID, string(models.RoleFranchisee))
	if err != nil {
		return nil, fmt.Errorf("list user franchises: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("list user franchises: %w", err)
	}
	return s.loadFranchises(ctx, ids)
}

func (s *Store) loadFranchises(ctx context.Context, ids []int64) ([]models.Franchise, error) {
	out := make([]models.Franchise, 0, len(ids))
	for _, id := range ids {
		f, err := s.GetFranchise(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// GetFranchise fetches a franchise with its admins and stores.
func (s *Store) GetFranchise(ctx context.Context, id int64) (models.Franchise, error) {
	f := models.Franchise{Admins: []models.AdminRef{}, Stores: []models.Store{}}
	if err := s.pool.QueryRow(ctx, `SELECT id, name FROM franchises WHERE id = $1;`, id).Scan(&f.ID, &f.Name); err != nil {
		return models.Franchise{}, notFound(err)
	}

	const adminsQuery = `
	SELECT u.id, u.name, u.email
	FROM user_roles r
	JOIN users u ON u.id = r.user_id
	WHERE r.role = $1 AND r.object_id = $2
	ORDER BY u.id;
	`
	rows, err := s.pool.Query(ctx, adminsQuery, string(models.RoleFranchisee), id)
	if err != nil {
		return models.Franchise{}, fmt.Errorf("load franchise admins: %w", err)
	}
	admins, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AdminRef, error) {
		var a models.AdminRef
		err := row.Scan(&a.ID, &a.Name, &a.Email)
		return a, err
	})
	if err != nil {
		return models.Franchise{}, fmt.Errorf("load franchise admins: %w", err)
	}
	f.Admins = append(f.Admins, admins...)

	rows, err = s.pool.Query(ctx, `SELECT id, franchise_id, name, total_revenue FROM stores WHERE franchise_id = $1 ORDER BY id;`, id)
	if err != nil {
		return models.Franchise{}, fmt.Errorf("load stores: %w", err)
	}
	stores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Store, error) {
		var st models.Store
		err := row.Scan(&st.ID, &st.FranchiseID, &st.Name, &st.TotalRevenue)
		return st, err
	})
	if err != nil {
		return models.Franchise{}, fmt.Errorf("load stores: %w", err)
	}
	f.Stores = append(f.Stores, stores...)
	return f, nil
}

// CreateFranchise inserts a franchise and grants each admin the franchisee role.
func (s *Store) CreateFranchise(ctx context.Context, name string, adminIDs []int64) (models.Franchise, error) {
	var id int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO franchises (name) VALUES ($1) RETURNING id;`, name).Scan(&id); err != nil {
			return err
		}
		for _, uid := range adminIDs {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1);`, uid).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return storage.ErrNotFound
			}
			if err := insertRole(ctx, tx, uid, models.FranchiseAdmin(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.Franchise{}, storage.ErrAlreadyExists
		}
		if errors.Is(err, storage.ErrNotFound) {
			return models.Franchise{}, err
		}
		return models.Franchise{}, fmt.Errorf("create franchise: %w", err)
	}
	return s.GetFranchise(ctx, id)
}

// UpdateFranchise renames a franchise.
func (s *Store) UpdateFranchise(ctx context.Context, id int64, name string) (models.Franchise, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE franchises SET name = $2 WHERE id = $1;`, id, name)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Franchise{}, storage.ErrAlreadyExists
		}
		return models.Franchise{}, fmt.Errorf("update franchise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Franchise{}, storage.ErrNotFound
	}
	return s.GetFranchise(ctx, id)
}

// DeleteFranchise removes a franchise, its stores and the franchisee roles scoped to it.
func (s *Store) DeleteFranchise(ctx context.Context, id int64) error {
	var affected int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE role = $1 AND object_id = $2;`, string(models.RoleFranchisee), id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM franchises WHERE id = $1;`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete franchise: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateStore adds a store to an existing franchise.
func (s *Store) CreateStore(ctx context.Context, franchiseID int64, name string) (models.Store, error) {
	const query = `
	INSERT INTO stores (franchise_id, name)
	SELECT id, $2 FROM franchises WHERE id = $1
	RETURNING id, franchise_id, name, total_revenue;
	`
	var st models.Store
	if err := s.pool.QueryRow(ctx, query, franchiseID, name).Scan(&st.ID, &st.FranchiseID, &st.Name, &st.TotalRevenue); err != nil {
		return models.Store{}, notFound(err)
	}
	return st, nil
}

// DeleteStore removes a store from its franchise.
func (s *Store) DeleteStore(ctx context.Context, franchiseID, storeID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM stores WHERE franchise_id = $1 AND id = $2;`, franchiseID, storeID)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
