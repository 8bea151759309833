package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/deskauth/pkg/cryptox"
	"github.com/aussiebroadwan/deskauth/pkg/jwtx"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	JWTSecret string        // Required: HS256 signing secret, at least 32 bytes
	Issuer    string        // Optional: issuer claim for tokens (default: deskauth)
	TokenTTL  time.Duration // Optional: session token lifetime (default: 12h)

	DatabaseDriver  string        // Optional: postgres or sqlite (default: postgres)
	DatabaseURL     string        // Required for postgres: connection string
	DatabaseFile    string        // Optional: SQLite database file (default: ./auth.db)
	MaxOpenConns    int           // Optional: postgres pool size (default: 10)
	MaxIdleConns    int           // Optional: postgres idle connections (default: 5)
	ConnMaxLifetime time.Duration // Optional: postgres connection lifetime (default: 30m)

	HashAlgorithm   string // Optional: bcrypt or argon2id (default: bcrypt)
	BcryptCost      int    // Optional: bcrypt work factor (default: 10)
	HashConcurrency int    // Optional: concurrent hash operations (default: GOMAXPROCS)

	BootstrapToken         string // Optional: enables POST /api/bootstrap
	BootstrapAdminUsername string // Optional: admin created at startup on an empty database
	BootstrapAdminPassword string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 4000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	AllowedOrigins      []string      // CORS origins (default: *)
}

func LoadConfig() Config {
	return Config{
		JWTSecret: os.Getenv("JWT_SECRET"),
		Issuer:    getEnvOrDefault("AUTH_ISSUER", "deskauth"),
		TokenTTL:  getEnvDurationOrDefault("AUTH_TOKEN_TTL", jwtx.DefaultSessionTTL),

		DatabaseDriver:  strings.ToLower(getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverPostgres)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DatabaseFile:    getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		MaxOpenConns:    getEnvIntOrDefault("AUTH_DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvIntOrDefault("AUTH_DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDurationOrDefault("AUTH_DB_CONN_MAX_LIFETIME", 30*time.Minute),

		HashAlgorithm:   getEnvOrDefault("AUTH_HASH_ALGORITHM", string(cryptox.AlgorithmBcrypt)),
		BcryptCost:      getEnvIntOrDefault("AUTH_BCRYPT_COST", cryptox.DefaultBcryptCost),
		HashConcurrency: getEnvIntOrDefault("AUTH_HASH_CONCURRENCY", 0),

		BootstrapToken:         os.Getenv("BOOTSTRAP_TOKEN"),
		BootstrapAdminUsername: os.Getenv("AUTH_BOOTSTRAP_ADMIN_USERNAME"),
		BootstrapAdminPassword: os.Getenv("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 4000),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		AllowedOrigins:      getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be set and at least %d bytes", jwtx.MinSecretLength))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}

	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_DATABASE_DRIVER %q is not one of postgres, sqlite", c.DatabaseDriver))
	}

	if _, err := cryptox.ParseAlgorithm(c.HashAlgorithm); err != nil {
		errs = append(errs, fmt.Errorf("AUTH_HASH_ALGORITHM: %w", err))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	if (c.BootstrapAdminUsername == "") != (c.BootstrapAdminPassword == "") {
		errs = append(errs, errors.New("AUTH_BOOTSTRAP_ADMIN_USERNAME and AUTH_BOOTSTRAP_ADMIN_PASSWORD must be set together"))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma-separated variable, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
