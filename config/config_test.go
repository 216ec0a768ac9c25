package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  enabled: false
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "db"
redis:
  host: "localhost"
  port: 6379
auth:
  secret: "test-secret"
  issuer: "cargogate"
  token_ttl_seconds: 86400
  login_rate_per_minute: 10
backends:
  ground:
    base_url: "http://localhost:8091"
  air:
    base_url: "http://localhost:8092"
  sea:
    base_url: "http://localhost:8093"
  call_timeout_seconds: 5
gate:
  http_addr: ":8080"
  resolve_cache_ttl_seconds: 300
  seed_demo_data: true
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.False(t, cfg.Database.Enabled)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, "test-secret", cfg.Auth.Secret)
	require.Equal(t, 86400, cfg.Auth.TokenTTLSeconds)
	require.Equal(t, "http://localhost:8092", cfg.Backends.Air.BaseURL)
	require.Equal(t, ":8080", cfg.Gate.HTTPAddr)
	require.True(t, cfg.Gate.SeedDemoData)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
