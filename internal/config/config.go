package config

import (
	"fmt"
	"os"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	HTTP     HTTPConfig
	Auth     AuthConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Address string // listen address (e.g., ":5000")
	// Production marks the runtime mode; session cookies carry the Secure
	// attribute only in production.
	Production bool
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string // token signing secret
}

// Load loads configuration from environment variables.
// It fails when JWT_SECRET is unset; tokens cannot be issued without it.
func Load() (*Config, error) {
	cfg := load()
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in
// development. WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg := load()
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

func load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "dronewatch.db"),
		},
		HTTP: HTTPConfig{
			Address:    getEnv("HTTP_ADDRESS", ":5000"),
			Production: getEnv("APP_ENV", "development") == "production",
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
	}
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	mode := "development"
	if c.HTTP.Production {
		mode = "production"
	}
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, Mode: %s, Auth: *** (masked) ***}", c.Database.Path, c.HTTP.Address, mode)
}
