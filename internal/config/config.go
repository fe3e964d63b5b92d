// Package config loads and validates process configuration from the
// environment using Viper. cmd/* load an optional .env file with godotenv first,
// so real environment variables always win.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Port is the HTTP listen port.
	Port int `mapstructure:"PORT"`
	// Env is the application environment ("development", "production").
	Env string `mapstructure:"APP_ENV"`

	// DBDriver selects the store: "sqlite" (default) or "postgres".
	DBDriver string `mapstructure:"DB_DRIVER"`
	// DBPath is the SQLite file, or ":memory:".
	DBPath string `mapstructure:"DB_PATH"`
	// DatabaseURL is the Postgres DSN; required when DBDriver is postgres.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// JWTSecret signs credentials. Required, at least 16 characters.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTTTL is the credential lifetime (e.g. "10h").
	JWTTTL time.Duration `mapstructure:"JWT_TTL"`
	// BcryptCost is the bcrypt work factor (4–31).
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// GitHubToken authenticates repository lookups; optional.
	GitHubToken string `mapstructure:"GITHUB_TOKEN"`
	// GitHubAPIURL is the GitHub REST base URL.
	GitHubAPIURL string `mapstructure:"GITHUB_API_URL"`

	// CORSAllowedOrigins is a comma-separated origin list, "*" for any.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is "json" or "console". Unset means json in production and
	// console elsewhere.
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// Load builds and validates Config from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys Viper already knows about, so every key
	// gets a default, even an empty one.
	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "data/devconnector.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "10h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_API_URL", "https://api.github.com")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
		if cfg.IsProduction() {
			cfg.LogFormat = "json"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}

	switch strings.ToLower(c.DBDriver) {
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("config: DB_PATH must be set for sqlite")
		}
	case "postgres", "postgresql", "pgx":
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set for postgres")
		}
	default:
		return fmt.Errorf("config: DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}

	if len(c.JWTSecret) < 16 {
		return errors.New("config: JWT_SECRET must be set to at least 16 characters")
	}
	if c.JWTTTL <= 0 {
		return errors.New("config: JWT_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AllowedOrigins splits CORSAllowedOrigins into a list.
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() string {
	if strings.EqualFold(c.DBDriver, "sqlite") {
		return c.DBPath
	}
	return c.DatabaseURL
}
