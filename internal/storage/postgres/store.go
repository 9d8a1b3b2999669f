package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for the pizza service.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the schema if it is missing.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique_idx ON users (LOWER(email));`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			object_id BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, role, object_id)
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			signature TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS franchises (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS franchises_name_unique_idx ON franchises (LOWER(name));`,
		`CREATE TABLE IF NOT EXISTS stores (
			id BIGSERIAL PRIMARY KEY,
			franchise_id BIGINT NOT NULL REFERENCES franchises(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			total_revenue DOUBLE PRECISION NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS menu (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			diner_id BIGINT NOT NULL REFERENCES users(id),
			franchise_id BIGINT NOT NULL,
			store_id BIGINT NOT NULL,
			date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status TEXT NOT NULL DEFAULT 'created',
			factory_jwt TEXT NOT NULL DEFAULT '',
			report_url TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS orders_diner_idx ON orders (diner_id, id DESC);`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			menu_id BIGINT NOT NULL,
			description TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// CreateUser inserts a user and its roles in one transaction.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if len(user.Roles) == 0 {
		user.Roles = []models.Role{models.Diner()}
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		const insert = `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id;`
		if err := tx.QueryRow(ctx, insert, user.Name, user.Email, user.PasswordHash).Scan(&user.ID); err != nil {
			return err
		}
		for _, r := range user.Roles {
			if err := insertRole(ctx, tx, user.ID, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func insertRole(ctx context.Context, tx pgx.Tx, userID int64, r models.Role) error {
	const q = `INSERT INTO user_roles (user_id, role, object_id) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING;`
	_, err := tx.Exec(ctx, q, userID, string(r.Kind), r.FranchiseID)
	return err
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT id, name, email, password_hash FROM users WHERE LOWER(email) = LOWER($1);`
	return s.findUser(ctx, query, strings.TrimSpace(email))
}

// FindByID fetches a user by id.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	const query = `SELECT id, name, email, password_hash FROM users WHERE id = $1;`
	return s.findUser(ctx, query, id)
}

func (s *Store) findUser(ctx context.Context, query string, arg any) (models.User, error) {
	var u models.User
	if err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash); err != nil {
		return models.User{}, notFound(err)
	}
	roles, err := s.loadRoles(ctx, u.ID)
	if err != nil {
		return models.User{}, err
	}
	u.Roles = roles
	return u, nil
}

func (s *Store) loadRoles(ctx context.Context, userID int64) ([]models.Role, error) {
	rows, err := s.pool.Query(ctx, `SELECT role, object_id FROM user_roles WHERE user_id = $1 ORDER BY role, object_id;`, userID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var kind string
		var objectID int64
		if err := rows.Scan(&kind, &objectID); err != nil {
			return nil, err
		}
		r, err := models.ParseRole(kind, objectID)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// UpdateUser applies the non-nil fields of update.
func (s *Store) UpdateUser(ctx context.Context, id int64, update storage.UserUpdate) (models.User, error) {
	const query = `
	UPDATE users SET
		name = COALESCE($2, name),
		email = COALESCE($3, email),
		password_hash = COALESCE($4, password_hash)
	WHERE id = $1;
	`
	tag, err := s.pool.Exec(ctx, query, id, update.Name, update.Email, update.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.User{}, storage.ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// AddSession registers a token signature for a user.
func (s *Store) AddSession(ctx context.Context, userID int64, signature string) error {
	const query = `
	INSERT INTO sessions (signature, user_id) VALUES ($1, $2)
	ON CONFLICT (signature) DO UPDATE SET user_id = EXCLUDED.user_id, created_at = NOW();
	`
	if _, err := s.pool.Exec(ctx, query, signature, userID); err != nil {
		return fmt.Errorf("add session: %w", err)
	}
	return nil
}

// FindSession returns the user owning a live token signature.
func (s *Store) FindSession(ctx context.Context, signature string) (int64, error) {
	var userID int64
	err := s.pool.QueryRow(ctx, `SELECT user_id FROM sessions WHERE signature = $1;`, signature).Scan(&userID)
	if err != nil {
		return 0, notFound(err)
	}
	return userID, nil
}

// RemoveSession revokes a token signature.
func (s *Store) RemoveSession(ctx context.Context, signature string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE signature = $1;`, signature); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
