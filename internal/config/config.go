package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "TAPEVM_"

// Config is the full runtime configuration of the tapevm binary.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
	Engine EngineConfig `mapstructure:"engine" yaml:"engine" json:"engine"`
	Token  TokenConfig  `mapstructure:"token" yaml:"token" json:"token"`
	Cache  CacheConfig  `mapstructure:"cache" yaml:"cache" json:"cache"`
	Log    LogConfig    `mapstructure:"log" yaml:"log" json:"log"`
	Wallet WalletConfig `mapstructure:"wallet" yaml:"wallet" json:"wallet"`
}

type ServerConfig struct {
	Addr           string `mapstructure:"addr" yaml:"addr" json:"addr"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled" yaml:"metrics_enabled" json:"metrics_enabled"`
}

type EngineConfig struct {
	MaxSteps  uint64 `mapstructure:"max_steps" yaml:"max_steps" json:"max_steps"`
	JumpTable bool   `mapstructure:"jump_table" yaml:"jump_table" json:"jump_table"`
}

// TokenConfig enables sealed tokens when Key is set.
type TokenConfig struct {
	Key          string   `mapstructure:"key" yaml:"key" json:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys" yaml:"fallback_keys" json:"fallback_keys"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend" yaml:"backend" json:"backend"` // none | memory | redis
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis" json:"redis"`

	// SingleFlight lets one caller compute a missing entry while identical
	// requests wait. With Redis the lock spans replicas.
	SingleFlight bool `mapstructure:"single_flight" yaml:"single_flight" json:"single_flight"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr" json:"addr"`
	Password string `mapstructure:"password" yaml:"password" json:"password"`
	DB       int    `mapstructure:"db" yaml:"db" json:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" json:"level"`
	File  string `mapstructure:"file" yaml:"file" json:"file"`
}

type WalletConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", MetricsEnabled: true},
		Engine: EngineConfig{MaxSteps: 50_000_000},
		Cache: CacheConfig{
			Backend: CacheNone,
			TTL:     10 * time.Minute,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "tapevm:result:"},
		},
		Log:    LogConfig{Level: "info"},
		Wallet: WalletConfig{Dir: filepath.Join(".tapevm", "sessions")},
	}
}

// envKeys maps environment variables to their dotted config path.
var envKeys = map[string]string{
	"SERVER_ADDR":            "server.addr",
	"SERVER_METRICS_ENABLED": "server.metrics_enabled",
	"ENGINE_MAX_STEPS":       "engine.max_steps",
	"ENGINE_JUMP_TABLE":      "engine.jump_table",
	"TOKEN_KEY":              "token.key",
	"TOKEN_FALLBACK_KEYS":    "token.fallback_keys",
	"CACHE_BACKEND":          "cache.backend",
	"CACHE_TTL":              "cache.ttl",
	"CACHE_SINGLE_FLIGHT":    "cache.single_flight",
	"CACHE_REDIS_ADDR":       "cache.redis.addr",
	"CACHE_REDIS_PASSWORD":   "cache.redis.password",
	"CACHE_REDIS_DB":         "cache.redis.db",
	"CACHE_REDIS_PREFIX":     "cache.redis.prefix",
	"LOG_LEVEL":              "log.level",
	"LOG_FILE":               "log.file",
	"WALLET_DIR":             "wallet.dir",
}

// Load builds the configuration: defaults, then the file at path (YAML or JSON,
// optional when path is empty), then TAPEVM_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := decode(raw, cfg, true); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	if env := fromEnv(os.Environ()); len(env) > 0 {
		if err := decode(env, cfg, false); err != nil {
			return nil, fmt.Errorf("invalid environment override: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that decoding cannot.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown cache backend %q (want none, memory or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	if len(c.Token.FallbackKeys) > 0 && c.Token.Key == "" {
		return fmt.Errorf("token fallback keys require an active token key")
	}
	return nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return raw, nil
}

func fromEnv(environ []string) map[string]any {
	out := map[string]any{}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		path, known := envKeys[strings.TrimPrefix(name, EnvPrefix)]
		if !known {
			continue
		}
		setPath(out, strings.Split(path, "."), value)
	}
	return out
}

func setPath(m map[string]any, keys []string, value any) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = value
}

func decode(raw map[string]any, cfg *Config, strict bool) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
