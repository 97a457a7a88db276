package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/microblog/pkg/httpx"
	"github.com/aussiebroadwan/microblog/pkg/jwtx"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrMissingSecretKey     = errors.New("SECRET_KEY is required")
	ErrMissingTranslatorKey = errors.New("TRANSLATOR_KEY is required")
)

type Config struct {
	SecretKey     string // Required: HS256 secret for access and reset tokens
	TranslatorKey string // Required: translation provider API key
	TranslatorURL string // Optional: translation provider base URL

	Issuer         string        // Optional: issuer claim for tokens (default: microblog)
	DatabaseDriver string        // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string        // Optional: SQLite database path (default: ./microblog.db)
	DatabaseURL    string        // Required for postgres: connection string
	PepperFile     string        // Optional: path to the password pepper file (default: ./pepper)
	AccessTokenTTL time.Duration // Optional: access token lifetime (default: 24h)
	ResetTokenTTL  time.Duration // Optional: password reset token lifetime (default: 10m)
	ResetURL       string        // Optional: page the reset link points at
	PostsPerPage   int           // Optional: posts per page (default: 25)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	RateLimits httpx.RateLimitProfiles
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory, if present, is loaded first and never overrides
// variables that are already set.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		SecretKey:      os.Getenv("SECRET_KEY"),
		TranslatorKey:  os.Getenv("TRANSLATOR_KEY"),
		TranslatorURL:  os.Getenv("TRANSLATOR_URL"),
		Issuer:         getEnvOrDefault("TOKEN_ISSUER", "microblog"),
		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", DriverSQLite),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "microblog.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),
		AccessTokenTTL: getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		ResetTokenTTL:  getEnvDurationOrDefault("RESET_TOKEN_TTL", jwtx.DefaultResetTokenTTL),
		ResetURL:       getEnvOrDefault("RESET_URL", "http://localhost:8080/reset-password"),
		PostsPerPage:   getEnvIntOrDefault("POSTS_PER_PAGE", 25),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		RateLimits: httpx.RateLimitProfilesFromEnv(),
	}
}

// Validate reports the first setting that stops the service from starting.
func (c Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	if c.TranslatorKey == "" {
		return ErrMissingTranslatorKey
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	return nil
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

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
