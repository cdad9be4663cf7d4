package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/tapevm"
	"github.com/aretw0/tapevm/internal/config"
	"github.com/aretw0/tapevm/pkg/adapters/memory"
	"github.com/aretw0/tapevm/pkg/adapters/redis"
	"github.com/aretw0/tapevm/pkg/keylock"
	"github.com/aretw0/tapevm/pkg/observability"
	"github.com/aretw0/tapevm/pkg/ports"
	"github.com/aretw0/tapevm/pkg/token"
)

// Runtime is an engine wired from configuration plus the resources it owns.
type Runtime struct {
	Engine  *tapevm.Engine
	Codec   token.Codec
	Metrics *observability.Metrics

	closers []func() error
}

// Close releases the cache backend, if any.
func (rt *Runtime) Close() error {
	var first error
	for _, c := range rt.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	rt.closers = nil
	return first
}

// BuildRuntime initializes an engine with standard CLI conventions.
func BuildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	// 1. Token codec
	codec, err := NewCodec(cfg.Token)
	if err != nil {
		return nil, err
	}
	rt.Codec = codec

	// 2. Logger & Hooks
	opts := []tapevm.Option{
		tapevm.WithLogger(logger),
		tapevm.WithCodec(codec),
		tapevm.WithMaxSteps(cfg.Engine.MaxSteps),
		tapevm.WithLifecycleHooks(observability.LogHooks(logger)),
	}
	if cfg.Server.MetricsEnabled {
		rt.Metrics = observability.NewMetrics(nil)
		opts = append(opts, tapevm.WithLifecycleHooks(rt.Metrics.Hooks()))
	}
	if cfg.Engine.JumpTable {
		opts = append(opts, tapevm.WithJumpTable())
	}

	// 3. Result cache
	cache, locker, err := rt.newCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		opts = append(opts, tapevm.WithCache(cache, cfg.Cache.TTL))
		if cfg.Cache.SingleFlight {
			lockOpts := []keylock.Option{keylock.WithLogger(logger)}
			if locker != nil {
				lockOpts = append(lockOpts, keylock.WithLocker(locker, 0))
			}
			opts = append(opts, tapevm.WithSingleFlight(keylock.New(lockOpts...)))
		}
	}

	rt.Engine = tapevm.New(opts...)
	return rt, nil
}

// NewCodec returns the plain JSON codec, sealed with AES-GCM when a key is configured.
func NewCodec(cfg config.TokenConfig) (token.Codec, error) {
	plain := token.NewJSONCodec()
	if cfg.Key == "" {
		return plain, nil
	}

	active, err := token.ParseKey(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("token key: %w", err)
	}
	seal := token.SealConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := token.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("token fallback key %d: %w", i, err)
		}
		seal.FallbackKeys = append(seal.FallbackKeys, key)
	}
	return token.NewSealedCodec(plain, seal)
}

// newCache returns the configured cache and, for shared backends, a locker spanning replicas.
func (rt *Runtime) newCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (ports.ResultCache, ports.DistributedLocker, error) {
	switch cfg.Backend {
	case config.CacheNone, "":
		return nil, nil, nil
	case config.CacheMemory:
		interval := cfg.TTL
		if interval <= 0 || interval > time.Minute {
			interval = time.Minute
		}
		c := memory.NewCache(memory.WithJanitor(interval))
		rt.closers = append(rt.closers, func() error {
			c.Close()
			return nil
		})
		return c, nil, nil
	case config.CacheRedis:
		c := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix))
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := c.Ping(pingCtx); err != nil {
			// Cache errors are misses inside the engine.
			logger.Warn("redis cache unreachable", "addr", cfg.Redis.Addr, "err", err)
		}
		rt.closers = append(rt.closers, c.Close)
		return c, redis.NewLocker(c.Client(), ""), nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
