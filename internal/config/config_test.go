package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout())
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Export.Enabled())
	assert.Equal(t, "dashboard_session", cfg.Session.CookieName)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
server:
  port: 9000
api:
  base_url: http://svc:5000/api
  timeout_seconds: 5
  stale_guard: true
database:
  host: db
  dbname: console
session:
  idle_timeout_minutes: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("DASHBOARD_API_BASE_URL", "http://override/api")
	t.Setenv("DASHBOARD_PORT", "9100")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://override/api", cfg.API.BaseURL)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout())
	assert.True(t, cfg.API.StaleGuard)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
	assert.Equal(t, 3*time.Minute, cfg.Session.IdleTimeout())
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [1,2"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_BadPortEnv(t *testing.T) {
	t.Setenv("DASHBOARD_PORT", "abc")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_TracingEnv(t *testing.T) {
	t.Setenv("DASHBOARD_TRACING_ENABLED", "true")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)

	t.Setenv("DASHBOARD_TRACING_ENABLED", "maybe")
	_, err = LoadConfig("")
	assert.Error(t, err)
}
