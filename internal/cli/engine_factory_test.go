package cli

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tapevm"
	"github.com/aretw0/tapevm/internal/config"
	"github.com/aretw0/tapevm/internal/logging"
	"github.com/aretw0/tapevm/pkg/token"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, cfg *config.Config) *Runtime {
	t.Helper()
	rt, err := BuildRuntime(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestBuildRuntime_Defaults(t *testing.T) {
	rt := build(t, config.Default())

	resp, err := rt.Engine.Execute(context.Background(), tapevm.Request{Program: strings.Repeat("+", 65) + "."})
	require.NoError(t, err)
	assert.Equal(t, "A", resp.Output)

	require.NotNil(t, rt.Metrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(rt.Metrics.Invocations.WithLabelValues("finished")))

	// Plain tokens decode without a key
	_, err = token.NewJSONCodec().Decode(resp.NextState)
	assert.NoError(t, err)
}

func TestBuildRuntime_MetricsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MetricsEnabled = false
	assert.Nil(t, build(t, cfg).Metrics)
}

func TestBuildRuntime_MemoryCache(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.CacheMemory
	rt := build(t, cfg)
	ctx := context.Background()

	first, err := rt.Engine.Execute(ctx, tapevm.Request{Program: "+++."})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := rt.Engine.Execute(ctx, tapevm.Request{Program: "+++."})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.NextState, second.NextState)
}

func TestBuildRuntime_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.Redis.Addr = mr.Addr()
	rt := build(t, cfg)
	ctx := context.Background()

	_, err := rt.Engine.Execute(ctx, tapevm.Request{Program: "+."})
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)
	assert.True(t, strings.HasPrefix(mr.Keys()[0], cfg.Cache.Redis.Prefix))

	resp, err := rt.Engine.Execute(ctx, tapevm.Request{Program: "+."})
	require.NoError(t, err)
	assert.True(t, resp.Cached)
}

func TestBuildRuntime_RedisSingleFlight(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.Redis.Addr = mr.Addr()
	cfg.Cache.SingleFlight = true
	rt := build(t, cfg)

	resp, err := rt.Engine.Execute(context.Background(), tapevm.Request{Program: "++."})
	require.NoError(t, err)
	assert.False(t, resp.Cached)

	// The lock is released; only the result remains.
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], cfg.Cache.Redis.Prefix))
}

func TestBuildRuntime_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = "memcached"

	_, err := BuildRuntime(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "memcached")
}

func TestNewCodec(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", token.KeySize)))
	old := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("o", token.KeySize)))

	t.Run("Plain without key", func(t *testing.T) {
		c, err := NewCodec(config.TokenConfig{})
		require.NoError(t, err)
		assert.IsType(t, token.JSONCodec{}, c)
	})

	t.Run("Sealed with key", func(t *testing.T) {
		c, err := NewCodec(config.TokenConfig{Key: key, FallbackKeys: []string{old}})
		require.NoError(t, err)
		assert.IsType(t, &token.SealedCodec{}, c)

		rt := build(t, &config.Config{
			Engine: config.EngineConfig{MaxSteps: 1000},
			Token:  config.TokenConfig{Key: key},
		})
		resp, err := rt.Engine.Execute(context.Background(), tapevm.Request{Program: ",."})
		require.NoError(t, err)

		_, err = token.NewJSONCodec().Decode(resp.NextState)
		assert.Error(t, err, "sealed tokens must not decode as plain JSON")

		st, err := c.Decode(resp.NextState)
		require.NoError(t, err)
		assert.True(t, st.AwaitingInput)
	})

	t.Run("Bad key", func(t *testing.T) {
		_, err := NewCodec(config.TokenConfig{Key: "short"})
		assert.ErrorContains(t, err, "token key")
	})

	t.Run("Bad fallback key", func(t *testing.T) {
		_, err := NewCodec(config.TokenConfig{Key: key, FallbackKeys: []string{"nope"}})
		assert.ErrorContains(t, err, "fallback key 0")
	})
}
