package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/spares/pkg/domain/gst"
	"github.com/vsinha/spares/pkg/infrastructure/logger"
)

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	// Storage
	Store       string
	DatabaseURL string

	// HTTP API
	HTTPAddr  string
	JWTSecret string
	TokenTTL  time.Duration
	GinMode   string

	// Tax
	CompanyGSTIN   string
	DefaultGSTRate gst.Rate

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	config := &Config{
		Store:         strings.ToLower(getEnv("SPARES_STORE", StoreMemory)),
		DatabaseURL:   databaseURL(),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		GinMode:       getEnv("GIN_MODE", "release"),
		CompanyGSTIN:  strings.ToUpper(getEnv("COMPANY_GSTIN", "")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	config.TokenTTL = ttl

	rate, err := strconv.Atoi(getEnv("DEFAULT_GST_RATE", "18"))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_GST_RATE: %w", err)
	}
	config.DefaultGSTRate = gst.Rate(rate)

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("SPARES_STORE must be %s or %s, got %q", StoreMemory, StorePostgres, c.Store)
	}
	if !c.DefaultGSTRate.Valid() {
		return fmt.Errorf("DEFAULT_GST_RATE must be one of 5, 12, 18, 28, got %d", c.DefaultGSTRate)
	}
	if c.CompanyGSTIN != "" && !gst.ValidGSTIN(c.CompanyGSTIN) {
		return fmt.Errorf("COMPANY_GSTIN %q is not a valid GSTIN", c.CompanyGSTIN)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

// RequireServer checks the settings only the HTTP API needs
func (c *Config) RequireServer() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.CompanyGSTIN == "" {
		return fmt.Errorf("COMPANY_GSTIN is required")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// databaseURL reads DATABASE_URL (or DB_URL) and makes sure sslmode and
// search_path are set
func databaseURL() string {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DB_URL")
	}
	if dbURL == "" {
		return ""
	}
	return withURLDefaults(dbURL)
}

func withURLDefaults(dbURL string) string {
	if !strings.Contains(dbURL, "://") {
		// key=value DSN
		if !strings.Contains(dbURL, "sslmode=") {
			dbURL += " sslmode=require"
		}
		return dbURL
	}
	if !strings.Contains(dbURL, "sslmode=") {
		dbURL = appendParam(dbURL, "sslmode=require")
	}
	if !strings.Contains(dbURL, "search_path=") {
		dbURL = appendParam(dbURL, "search_path=public")
	}
	return dbURL
}

func appendParam(dbURL, param string) string {
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	return dbURL + sep + param
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
