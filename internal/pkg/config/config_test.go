package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/shopcart/internal/pkg/config"
	"github.com/ammerola/shopcart/test/helpers"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := config.Load(helpers.TestLogger())
	require.NoError(t, err)

	assert.Equal(t, "shopcart", cfg.App.Name)
	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, "@RocketShoes:cart", cfg.Cart.StorageKey)
	assert.Equal(t, config.BackendFile, cfg.Cart.Backend)
	assert.Equal(t, "http://localhost:3333", cfg.Inventory.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Inventory.Timeout)
	assert.Equal(t, uint32(5), cfg.Inventory.BreakerMaxFailures)
	assert.Equal(t, "cart_snapshots", cfg.Postgres.Table)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Zero(t, cfg.Redis.TTL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("CART_STORAGE_BACKEND", "REDIS")
	t.Setenv("CART_STORAGE_KEY", "cart:42")
	t.Setenv("INVENTORY_BASE_URL", "https://api.example.com/v1")
	t.Setenv("INVENTORY_TIMEOUT", "750ms")
	t.Setenv("INVENTORY_RATE_LIMIT_REQUESTS", "3")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_TTL", "72h")
	t.Setenv("INVENTORY_TRACING", "true")

	cfg, err := config.Load(helpers.TestLogger())
	require.NoError(t, err)

	assert.Equal(t, config.BackendRedis, cfg.Cart.Backend)
	assert.Equal(t, "cart:42", cfg.Cart.StorageKey)
	assert.Equal(t, "https://api.example.com/v1", cfg.Inventory.BaseURL)
	assert.Equal(t, 750*time.Millisecond, cfg.Inventory.Timeout)
	assert.Equal(t, 3, cfg.Inventory.RateLimitRequests)
	assert.True(t, cfg.Inventory.EnableTracing)
	assert.Equal(t, "cache:6380", cfg.Redis.Address())
	assert.Equal(t, 72*time.Hour, cfg.Redis.TTL)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("INVENTORY_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "zero")

	cfg, err := config.Load(helpers.TestLogger())
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Inventory.Timeout)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("CART_STORAGE_BACKEND", "floppy")

	_, err := config.Load(helpers.TestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*config.Config)
		wantError string
	}{
		{
			name:   "valid_test_config",
			mutate: func(*config.Config) {},
		},
		{
			name:      "missing_storage_key",
			mutate:    func(c *config.Config) { c.Cart.StorageKey = "" },
			wantError: "Cart.StorageKey",
		},
		{
			name:      "relative_inventory_url",
			mutate:    func(c *config.Config) { c.Inventory.BaseURL = "api/v1" },
			wantError: "must be absolute",
		},
		{
			name: "bad_table_name",
			mutate: func(c *config.Config) {
				c.Cart.Backend = config.BackendPostgres
				c.Postgres.Table = "carts; drop table users"
			},
			wantError: "invalid snapshot table name",
		},
		{
			name: "s3_requires_bucket",
			mutate: func(c *config.Config) {
				c.Cart.Backend = config.BackendS3
				c.S3.Bucket = ""
			},
			wantError: "S3.Bucket",
		},
		{
			name: "production_rejects_memory_backend",
			mutate: func(c *config.Config) {
				c.App.Environment = "production"
				c.Cart.Backend = config.BackendMemory
				c.Inventory.BaseURL = "https://api.example.com"
			},
			wantError: "memory storage backend",
		},
		{
			name: "production_requires_https",
			mutate: func(c *config.Config) {
				c.App.Environment = "production"
			},
			wantError: "https",
		},
		{
			name: "production_file_backend",
			mutate: func(c *config.Config) {
				c.App.Environment = "production"
				c.Inventory.BaseURL = "https://api.example.com"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := helpers.LoadTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRedisConfig_Address(t *testing.T) {
	assert.Equal(t, "cache:6380", config.RedisConfig{Host: "cache", Port: "6380"}.Address())
	assert.Equal(t, "[::1]:6379", config.RedisConfig{Host: "::1", Port: "6379"}.Address())
}
