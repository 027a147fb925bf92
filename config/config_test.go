package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRead_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Read(viper.New(), filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestRead_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `{
		"app_port": "9090",
		"jwt_secret": "from-file",
		"db_driver": "SQLite",
		"sqlite_path": "/tmp/blog.db",
		"cors_allowed_origins": ["https://blog.example.com"]
	}`)
	t.Setenv("APP_PORT", "7070")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")

	cfg, err := Read(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.AppPort)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/blog.db", cfg.SQLitePath)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"https://blog.example.com"}, cfg.AllowedOrigins)
}

func TestRead_OriginsFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Read(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestRead_Invalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Read(viper.New(), "")
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("DB_DRIVER", "oracle")
		_, err := Read(viper.New(), "")
		assert.ErrorContains(t, err, "oracle")
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		_, err := Read(viper.New(), writeConfig(t, `{"app_port": `))
		assert.Error(t, err)
	})
}

func TestOpenDatabase_SQLite(t *testing.T) {
	cfg := AppConfig{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "nested", "blog.db"),
		LogLevel:   "silent",
	}

	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	for _, table := range []string{"users", "categories", "posts", "post_categories"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
