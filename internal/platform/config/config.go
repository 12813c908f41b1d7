package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultPort              = "8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultDatabaseMaxConns  = 16
	defaultDatabaseTimeout   = 5 * time.Second
	defaultMigrationsPath    = "migrations"
	defaultShippingThreshold = "500"
	defaultDeliveryCharge    = "50"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Shipping ShippingConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig stores PostgreSQL connection parameters.
type DatabaseConfig struct {
	URL            string
	MaxConns       int32
	ConnectTimeout time.Duration
	MigrationsPath string
}

// AuthConfig holds the bearer-token verification secret.
type AuthConfig struct {
	JWTSecret string
}

// ShippingConfig parameterises the delivery-charge policy.
type ShippingConfig struct {
	FreeShippingThreshold decimal.Decimal
	DeliveryCharge        decimal.Decimal
}

// Load reads configuration from the environment, applying defaults and
// validating required values.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Port:            envOrDefault("PORT", defaultPort),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			URL:            strings.TrimSpace(os.Getenv("DATABASE_URL")),
			MaxConns:       defaultDatabaseMaxConns,
			ConnectTimeout: defaultDatabaseTimeout,
			MigrationsPath: envOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
		},
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required")
	}

	if raw := strings.TrimSpace(os.Getenv("DB_MAX_CONNS")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("config: invalid DB_MAX_CONNS %q", raw)
		}
		cfg.Database.MaxConns = int32(parsed)
	}

	threshold, err := decimalEnv("FREE_SHIPPING_THRESHOLD", defaultShippingThreshold)
	if err != nil {
		return Config{}, err
	}
	charge, err := decimalEnv("DELIVERY_CHARGE", defaultDeliveryCharge)
	if err != nil {
		return Config{}, err
	}
	cfg.Shipping = ShippingConfig{
		FreeShippingThreshold: threshold,
		DeliveryCharge:        charge,
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func decimalEnv(key, fallback string) (decimal.Decimal, error) {
	raw := envOrDefault(key, fallback)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: invalid %s %q", key, raw)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("config: %s must be non-negative", key)
	}
	return value, nil
}
