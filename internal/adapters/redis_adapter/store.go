// internal/adapters/redis_adapter/store.go
package redis_adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/shopcart/internal/core/ports"
	"github.com/ammerola/shopcart/internal/pkg/config"
)

// KeyPrefix namespaces cart snapshots in a shared Redis database
const KeyPrefix = "cart"

// Store persists cart snapshots as Redis string values
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Statically assert that *Store implements the SnapshotStore interface.
var _ ports.SnapshotStore = (*Store)(nil)

// NewClient builds a Redis client from configuration and verifies the connection
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewStore creates a snapshot store. A zero ttl keeps snapshots forever.
func NewStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "redis_store")),
	}
}

// Load returns the snapshot stored under key
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, BuildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.logger.DebugContext(ctx, "snapshot miss", slog.String("key", key))
			return nil, ports.ErrSnapshotNotFound
		}
		s.logger.ErrorContext(ctx, "failed to get snapshot",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, &StoreError{Op: "get", Key: key, Err: err}
	}

	return data, nil
}

// Save overwrites the snapshot stored under key
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, BuildKey(key), data, s.ttl).Err(); err != nil {
		s.logger.ErrorContext(ctx, "failed to set snapshot",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return &StoreError{Op: "set", Key: key, Err: err}
	}

	s.logger.DebugContext(ctx, "snapshot saved",
		slog.String("key", key),
		slog.Int("bytes", len(data)),
		slog.Duration("ttl", s.ttl))

	return nil
}

// Ping checks if Redis is accessible
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping error: %w", err)
	}
	return nil
}

// Close releases the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

// BuildKey namespaces a storage key
func BuildKey(key string) string {
	return KeyPrefix + ":" + key
}

// StoreError represents store-specific errors
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("redis %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
