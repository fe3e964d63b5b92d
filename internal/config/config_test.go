package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnv clears every key Load reads, then applies kv.
func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{
		"PORT", "APP_ENV", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "JWT_SECRET", "JWT_TTL",
		"BCRYPT_COST", "GITHUB_TOKEN", "GITHUB_API_URL", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

const secret = "0123456789abcdef0123"

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"JWT_SECRET": secret})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "data/devconnector.db", cfg.DSN())
	assert.Equal(t, 36000*time.Second, cfg.JWTTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "https://api.github.com", cfg.GitHubAPIURL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverride(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":           secret,
		"PORT":                 "9090",
		"APP_ENV":              "production",
		"DB_DRIVER":            "postgres",
		"DATABASE_URL":         "postgres://localhost/dev",
		"JWT_TTL":              "15m",
		"BCRYPT_COST":          "10",
		"CORS_ALLOWED_ORIGINS": "https://a.dev, https://b.dev",
		"LOG_FORMAT":           "console",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://localhost/dev", cfg.DSN())
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.AllowedOrigins())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"no secret", map[string]string{}, "JWT_SECRET"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "JWT_SECRET"},
		{"postgres without url", map[string]string{"JWT_SECRET": secret, "DB_DRIVER": "postgres"}, "DATABASE_URL"},
		{"unknown driver", map[string]string{"JWT_SECRET": secret, "DB_DRIVER": "mongo"}, "DB_DRIVER"},
		{"bcrypt cost", map[string]string{"JWT_SECRET": secret, "BCRYPT_COST": "40"}, "BCRYPT_COST"},
		{"log format", map[string]string{"JWT_SECRET": secret, "LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"bad ttl", map[string]string{"JWT_SECRET": secret, "JWT_TTL": "-1h"}, "JWT_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ProductionLogFormat(t *testing.T) {
	setEnv(t, map[string]string{"JWT_SECRET": secret, "APP_ENV": "production"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.LogFormat)

	setEnv(t, map[string]string{"JWT_SECRET": secret, "APP_ENV": "production", "LOG_FORMAT": "console"})
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.LogFormat)
}
