// Package redis keeps the session registry in Redis so tokens can be revoked
// across several service instances.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hongminglow/pizza-be/internal/storage"
	goredis "github.com/redis/go-redis/v9"
)

var _ storage.SessionStore = (*SessionStore)(nil)

const keyPrefix = "session:"

// Options configures the Redis connection.
type Options struct {
	Address  string
	Password string
	DB       int
	// TTL should match the token lifetime; expired sessions drop out on their own.
	TTL time.Duration
}

// SessionStore implements storage.SessionStore on top of go-redis.
type SessionStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSessionStore dials Redis and verifies the connection.
func NewSessionStore(ctx context.Context, opts Options) (*SessionStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &SessionStore{client: client, ttl: opts.TTL}, nil
}

// Ping checks that Redis is reachable.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *SessionStore) Close() error {
	return s.client.Close()
}

// AddSession registers a token signature for a user.
func (s *SessionStore) AddSession(ctx context.Context, userID int64, signature string) error {
	if err := s.client.Set(ctx, keyPrefix+signature, userID, s.ttl).Err(); err != nil {
		return fmt.Errorf("add session: %w", err)
	}
	return nil
}

// FindSession returns the user owning a live token signature.
func (s *SessionStore) FindSession(ctx context.Context, signature string) (int64, error) {
	val, err := s.client.Get(ctx, keyPrefix+signature).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("find session: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("find session: corrupt value %q", val)
	}
	return id, nil
}

// RemoveSession revokes a token signature.
func (s *SessionStore) RemoveSession(ctx context.Context, signature string) error {
	if err := s.client.Del(ctx, keyPrefix+signature).Err(); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
