// internal/pkg/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends for the cart snapshot
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Config holds all application configuration
type Config struct {
	// Application
	App AppConfig

	// Cart engine
	Cart CartConfig

	// Remote inventory API
	Inventory InventoryConfig

	// Snapshot backends
	File     FileConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	S3       S3Config
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `required:"true"`
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// CartConfig holds cart engine configuration
type CartConfig struct {
	StorageKey string `required:"true"`
	Backend    string `required:"true"`
}

// InventoryConfig holds the inventory client configuration
type InventoryConfig struct {
	BaseURL            string `required:"true"`
	Timeout            time.Duration
	RateLimitRequests  int
	RateLimitDuration  time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	EnableTracing      bool
}

// FileConfig holds local file store configuration
type FileConfig struct {
	Dir string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	TTL          time.Duration // zero keeps snapshots forever
}

// Address returns host:port for Redis
func (r RedisConfig) Address() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// PostgresConfig holds database configuration
type PostgresConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	Table          string
	MaxConnections int
	MigrateOnStart bool
}

// S3Config holds object store configuration
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // For MinIO in development
	UsePathStyle    bool   // For MinIO compatibility
}

// Load loads configuration from environment variables
func Load(logger *slog.Logger) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	env := getEnv(v, "APP_ENV", "development")

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv(v, "APP_NAME", "shopcart"),
			Environment: env,
			Version:     getEnv(v, "APP_VERSION", "dev"),
			LogLevel:    getEnv(v, "LOG_LEVEL", "info"),
			LogFormat:   getEnv(v, "LOG_FORMAT", "json"),
			Debug:       getBoolEnv(v, "APP_DEBUG", env == "development"),
		},
		Cart: CartConfig{
			StorageKey: getEnv(v, "CART_STORAGE_KEY", "@RocketShoes:cart"),
			Backend:    strings.ToLower(getEnv(v, "CART_STORAGE_BACKEND", BackendFile)),
		},
		Inventory: InventoryConfig{
			BaseURL:            getEnv(v, "INVENTORY_BASE_URL", "http://localhost:3333"),
			Timeout:            getDurationEnv(v, "INVENTORY_TIMEOUT", 5*time.Second),
			RateLimitRequests:  getIntEnv(v, "INVENTORY_RATE_LIMIT_REQUESTS", 20),
			RateLimitDuration:  getDurationEnv(v, "INVENTORY_RATE_LIMIT_DURATION", time.Second),
			BreakerMaxFailures: uint32(getIntEnv(v, "INVENTORY_BREAKER_MAX_FAILURES", 5)),
			BreakerOpenTimeout: getDurationEnv(v, "INVENTORY_BREAKER_OPEN_TIMEOUT", 30*time.Second),
			EnableTracing:      getBoolEnv(v, "INVENTORY_TRACING", false),
		},
		File: FileConfig{
			Dir: getEnv(v, "CART_FILE_DIR", ".shopcart"),
		},
		Redis: RedisConfig{
			Host:         getEnv(v, "REDIS_HOST", "localhost"),
			Port:         getEnv(v, "REDIS_PORT", "6379"),
			Password:     getEnv(v, "REDIS_PASSWORD", ""),
			DB:           getIntEnv(v, "REDIS_DB", 0),
			MaxRetries:   getIntEnv(v, "REDIS_MAX_RETRIES", 3),
			DialTimeout:  getDurationEnv(v, "REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv(v, "REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv(v, "REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:     getIntEnv(v, "REDIS_POOL_SIZE", 4),
			TTL:          getDurationEnv(v, "REDIS_TTL", 0),
		},
		Postgres: PostgresConfig{
			Host:           getEnv(v, "DB_HOST", "localhost"),
			Port:           getEnv(v, "DB_PORT", "5432"),
			User:           getEnv(v, "DB_USER", "shopcart"),
			Password:       getEnv(v, "DB_PASSWORD", "shopcart_dev"),
			Name:           getEnv(v, "DB_NAME", "shopcart"),
			SSLMode:        getEnv(v, "DB_SSL_MODE", "disable"),
			Table:          getEnv(v, "DB_SNAPSHOT_TABLE", "cart_snapshots"),
			MaxConnections: getIntEnv(v, "DB_MAX_CONNECTIONS", 4),
			MigrateOnStart: getBoolEnv(v, "DB_MIGRATE_ON_START", env != "production"),
		},
		S3: S3Config{
			Region:          getEnv(v, "AWS_REGION", "us-east-1"),
			Bucket:          getEnv(v, "AWS_S3_BUCKET", "shopcart"),
			Prefix:          getEnv(v, "AWS_S3_PREFIX", "carts/"),
			AccessKeyID:     getEnv(v, "AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv(v, "AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv(v, "AWS_S3_ENDPOINT", ""),
			UsePathStyle:    getBoolEnv(v, "AWS_S3_PATH_STYLE", env == "development"),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := (&BasicValidator{}).Validate(c); err != nil {
		return err
	}

	if c.IsProduction() {
		return (&ProductionValidator{}).Validate(c)
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "shopcart")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CART_STORAGE_BACKEND", BackendFile)
}

func getEnv(v *viper.Viper, key, defaultValue string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(v *viper.Viper, key string, defaultValue bool) bool {
	if value := v.GetString(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(v *viper.Viper, key string, defaultValue int) int {
	if value := v.GetString(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if value := v.GetString(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
