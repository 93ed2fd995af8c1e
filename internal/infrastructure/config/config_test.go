package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("parses yaml config", func(t *testing.T) {
		path := writeConfigFile(t, `
server:
  port: 9090
  allowed_origins:
    - http://localhost:4000
storage:
  database_path: /tmp/test-fintrack.db
logging:
  level: debug
  format: json
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, []string{"http://localhost:4000"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, "/tmp/test-fintrack.db", cfg.Storage.DatabasePath)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("expands environment variables", func(t *testing.T) {
		t.Setenv("TEST_DB_PATH", "/data/fintrack.db")
		path := writeConfigFile(t, `
storage:
  database_path: ${TEST_DB_PATH}
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/data/fintrack.db", cfg.Storage.DatabasePath)
	})

	t.Run("fills defaults for missing fields", func(t *testing.T) {
		path := writeConfigFile(t, `
logging:
  level: warn
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "fintrack.db", cfg.Storage.DatabasePath)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, "text", cfg.Logging.Format)
	})

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FINTRACK_PORT", "9191")
	t.Setenv("FINTRACK_DB_PATH", "/var/lib/fintrack.db")
	t.Setenv("FINTRACK_ALLOWED_ORIGINS", "http://a.example.com, http://b.example.com")
	t.Setenv("LOG_LEVEL", "error")

	cfg := LoadFromEnv()

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "/var/lib/fintrack.db", cfg.Storage.DatabasePath)
	assert.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadOrEnvWithPath(t *testing.T) {
	t.Run("falls back to env when file is absent", func(t *testing.T) {
		t.Setenv("FINTRACK_PORT", "7070")
		cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Equal(t, 7070, cfg.Server.Port)
	})

	t.Run("prefers file when present", func(t *testing.T) {
		path := writeConfigFile(t, "server:\n  port: 6060\n")
		cfg := LoadOrEnvWithPath(path)
		assert.Equal(t, 6060, cfg.Server.Port)
	})
}
