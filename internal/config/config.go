package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Repository variant names selectable via COMMENT_REPO_VARIANT
const (
	VariantDirect  = "direct"
	VariantMoniker = "moniker"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Comment pipeline configuration
	Comments CommentsConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// CommentsConfig holds comment repository and pipeline settings
type CommentsConfig struct {
	// Variant selects the repository implementation: "direct" (container
	// always addressed by numeric id) or "moniker" (moniker resolution
	// with container auto-provisioning).
	Variant string

	// EnforceOpenGate controls whether save checks the container's
	// allow_comments flag. The historical behavior differs per variant,
	// so it is configurable rather than hard-wired.
	EnforceOpenGate bool

	// RecentOnly makes the read endpoint return only comments not yet
	// baked into a static build. Deployment-level, not per-request.
	RecentOnly bool

	// Throttle window: at most ThrottlePasses write attempts per session
	// within ThrottleInterval.
	ThrottlePasses   int
	ThrottleInterval time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	variant := getEnv("COMMENT_REPO_VARIANT", VariantMoniker)

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "commentzero"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Comments: CommentsConfig{
			Variant: variant,
			// Direct deployments historically reject saves to closed
			// containers; moniker deployments never checked the gate.
			EnforceOpenGate:  getBoolEnv("COMMENT_ENFORCE_OPEN_GATE", variant == VariantDirect),
			RecentOnly:       getBoolEnv("COMMENTS_RECENT_ONLY", false),
			ThrottlePasses:   getIntEnv("COMMENT_THROTTLE_PASSES", 2),
			ThrottleInterval: getDurationEnv("COMMENT_THROTTLE_INTERVAL", 60*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Comments.Variant != VariantDirect && c.Comments.Variant != VariantMoniker {
		return fmt.Errorf("COMMENT_REPO_VARIANT must be %q or %q", VariantDirect, VariantMoniker)
	}
	if c.Comments.ThrottlePasses < 1 {
		return fmt.Errorf("COMMENT_THROTTLE_PASSES must be at least 1")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
