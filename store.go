package shopcart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ammerola/shopcart/internal/adapters/db"
	"github.com/ammerola/shopcart/internal/adapters/redis_adapter"
	"github.com/ammerola/shopcart/internal/adapters/storage"
	"github.com/ammerola/shopcart/internal/pkg/config"
)

// OpenStore connects the snapshot backend named by cfg.Cart.Backend
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (Store, error) {
	logger.Info("opening cart store", slog.String("backend", cfg.Cart.Backend))

	switch cfg.Cart.Backend {
	case config.BackendFile:
		store, err := storage.NewOsFileStore(cfg.File.Dir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		return store, nil

	case config.BackendMemory:
		return storage.NewMemoryStore(logger), nil

	case config.BackendRedis:
		client, err := redis_adapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return redis_adapter.NewStore(client, cfg.Redis.TTL, logger), nil

	case config.BackendPostgres:
		if cfg.Postgres.MigrateOnStart {
			err := db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
				DatabaseURL: db.DSN(cfg.Postgres),
			}, logger, 3)
			if err != nil {
				return nil, err
			}
		}
		sqlDB, err := db.Open(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db.NewSnapshotStore(sqlDB, cfg.Postgres.Table, logger), nil

	case config.BackendS3:
		client, err := storage.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		store := storage.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Prefix, logger)
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize s3 store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Cart.Backend)
	}
}
