package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration
type Config struct {
	// Runtime mode, development or production
	Env string

	// Server settings
	Host string
	Port string
	// Browser origins allowed to call the API; "*" allows any
	AllowedOrigins []string

	// Storage settings
	DataDir            string
	CasesFile          string
	FileStorageEnabled bool
	FallbackDBPath     string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings
	CacheSize int
	CacheTTL  time.Duration

	// Office shown in API responses
	OfficeName string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Env:        strings.ToLower(getEnv("APP_ENV", EnvProduction)),
		Host:       getEnv("HOST", "127.0.0.1"),
		Port:       getEnv("PORT", "8080"),
		DataDir:    getEnv("DATA_DIR", "./data"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "json"),
		OfficeName: getEnv("OFFICE_NAME", "Barangay Hall"),
	}

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("invalid APP_ENV: %q", cfg.Env)
	}
	if cfg.IsDevelopment() {
		cfg.LogLevel = "debug"
		cfg.LogFormat = getEnv("LOG_FORMAT", "text")
	}

	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"))

	cfg.CasesFile = getEnv("CASES_FILE", filepath.Join(cfg.DataDir, "database", "cases.json"))
	cfg.FallbackDBPath = getEnv("FALLBACK_DB_PATH", filepath.Join(cfg.DataDir, "fallback.db"))

	var err error
	cfg.FileStorageEnabled, err = strconv.ParseBool(getEnv("FILE_STORAGE_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid FILE_STORAGE_ENABLED: %w", err)
	}

	cfg.CacheSize, err = strconv.Atoi(getEnv("CACHE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = time.Duration(cacheTTL) * time.Minute

	return cfg, nil
}

// IsDevelopment reports whether verbose logging and debug tooling are on.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Address is the host:port pair the HTTP server binds to.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// splitList parses a comma separated list, dropping blank entries.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
