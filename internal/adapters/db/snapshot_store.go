// internal/adapters/db/snapshot_store.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/ammerola/shopcart/internal/core/ports"
)

// DefaultTable is created by the embedded migrations
const DefaultTable = "cart_snapshots"

// SnapshotStore keeps cart snapshots in a Postgres table, one row per key
type SnapshotStore struct {
	db      *sql.DB
	table   string
	builder squirrel.StatementBuilderType
	logger  *slog.Logger
}

// Statically assert that *SnapshotStore implements the SnapshotStore interface.
var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a store over db. An empty table uses DefaultTable.
func NewSnapshotStore(db *sql.DB, table string, logger *slog.Logger) *SnapshotStore {
	if table == "" {
		table = DefaultTable
	}
	return &SnapshotStore{
		db:      db,
		table:   table,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger:  logger.With(slog.String("component", "snapshot_repository")),
	}
}

// Load returns the snapshot stored under key
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	query, args, err := s.builder.
		Select("data").
		From(s.table).
		Where(squirrel.Eq{"cart_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var data []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrSnapshotNotFound
		}
		s.logger.ErrorContext(ctx, "failed to load snapshot",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return data, nil
}

// Save upserts the snapshot stored under key
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	query, args, err := s.builder.
		Insert(s.table).
		Columns("cart_key", "data", "updated_at").
		Values(key, data, time.Now().UTC()).
		Suffix("ON CONFLICT (cart_key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "failed to save snapshot",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.DebugContext(ctx, "snapshot saved",
		slog.String("key", key),
		slog.Int("bytes", len(data)))

	return nil
}

// Ping verifies database connectivity
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes all database connections
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
