// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// ErrMissingRequiredConfig is returned when a required setting is empty
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// BasicValidator performs basic configuration validation
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	// Validate required fields using reflection
	if err := validateRequiredFields(cfg); err != nil {
		return err
	}

	u, err := url.Parse(cfg.Inventory.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("inventory base url must be absolute: %q", cfg.Inventory.BaseURL)
	}

	if cfg.Inventory.Timeout < 0 {
		return fmt.Errorf("inventory timeout cannot be negative")
	}

	if cfg.Inventory.RateLimitRequests < 0 {
		return fmt.Errorf("inventory rate_limit_requests cannot be negative")
	}

	switch cfg.Cart.Backend {
	case BackendFile:
		if cfg.File.Dir == "" {
			return fmt.Errorf("%w: File.Dir", ErrMissingRequiredConfig)
		}
	case BackendMemory:
	case BackendRedis:
		if cfg.Redis.Host == "" || cfg.Redis.Port == "" {
			return fmt.Errorf("%w: Redis.Host/Redis.Port", ErrMissingRequiredConfig)
		}
		if cfg.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis pool_size must be positive")
		}
	case BackendPostgres:
		if cfg.Postgres.Host == "" || cfg.Postgres.Name == "" {
			return fmt.Errorf("%w: Postgres.Host/Postgres.Name", ErrMissingRequiredConfig)
		}
		if !isIdentifier(cfg.Postgres.Table) {
			return fmt.Errorf("invalid snapshot table name %q", cfg.Postgres.Table)
		}
	case BackendS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("%w: S3.Bucket", ErrMissingRequiredConfig)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Cart.Backend)
	}

	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	if cfg.Cart.Backend == BackendMemory {
		return fmt.Errorf("memory storage backend cannot be used in production")
	}

	if cfg.Cart.Backend == BackendPostgres {
		if strings.Contains(cfg.Postgres.Password, "MISSING_") || cfg.Postgres.Password == "shopcart_dev" {
			return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
		}
		if cfg.Postgres.SSLMode == "disable" {
			return fmt.Errorf("database SSL must be enabled in production")
		}
	}

	if strings.HasPrefix(cfg.Inventory.BaseURL, "http://") {
		return fmt.Errorf("inventory base url must use https in production")
	}

	return nil
}

// validateRequiredFields uses reflection to check required struct tags
func validateRequiredFields(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	return validateStruct(v, "")
}

func validateStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		fieldName := fieldType.Name

		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if required := fieldType.Tag.Get("required"); required == "true" {
			if isZeroValue(field) {
				return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, fieldName)
			}
		}

		if field.Kind() == reflect.Struct {
			if err := validateStruct(field, fieldName); err != nil {
				return err
			}
		}
	}

	return nil
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == "" || strings.HasPrefix(v.String(), "MISSING_")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Bool:
		return !v.Bool()
	default:
		return false
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
