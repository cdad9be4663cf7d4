package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tapevm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, config.CacheNone, cfg.Cache.Backend)
	assert.Equal(t, uint64(50_000_000), cfg.Engine.MaxSteps)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "tapevm.yaml", `
server:
  addr: ":9090"
engine:
  max_steps: 1000
  jump_table: true
cache:
  backend: redis
  ttl: 90s
  redis:
    addr: "redis:6379"
    db: 2
token:
  key: "0123456789abcdef0123456789abcdef"
  fallback_keys: ["old"]
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.MetricsEnabled, "unset keys keep defaults")
	assert.Equal(t, uint64(1000), cfg.Engine.MaxSteps)
	assert.True(t, cfg.Engine.JumpTable)
	assert.Equal(t, config.CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "tapevm:result:", cfg.Cache.Redis.Prefix)
	assert.Equal(t, []string{"old"}, cfg.Token.FallbackKeys)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "tapevm.json", `{"cache": {"backend": "memory", "ttl": "1m"}, "log": {"level": "debug"}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "tapevm.yaml", "server:\n  addr: \":9090\"\n")

	t.Setenv("TAPEVM_SERVER_ADDR", ":7070")
	t.Setenv("TAPEVM_SERVER_METRICS_ENABLED", "false")
	t.Setenv("TAPEVM_ENGINE_MAX_STEPS", "42")
	t.Setenv("TAPEVM_CACHE_TTL", "5s")
	t.Setenv("TAPEVM_TOKEN_KEY", "k")
	t.Setenv("TAPEVM_TOKEN_FALLBACK_KEYS", "a,b")
	t.Setenv("TAPEVM_UNKNOWN", "ignored")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.False(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, uint64(42), cfg.Engine.MaxSteps)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"a", "b"}, cfg.Token.FallbackKeys)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "c.yaml", "engine:\n  max_stepz: 3\n"))
		assert.Error(t, err)
	})

	t.Run("BadBackend", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "c.yaml", "cache:\n  backend: disk\n"))
		assert.ErrorContains(t, err, "unknown cache backend")
	})

	t.Run("FallbackWithoutKey", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "c.yaml", "token:\n  fallback_keys: [x]\n"))
		assert.Error(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "c.json", "{"))
		assert.Error(t, err)
	})
}
