package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/episodes/internal/resource"
)

// Config captures everything the episodes tool needs at startup.
type Config struct {
	EpisodesURL  string
	Timeout      time.Duration
	UserAgent    string
	ListPolicy   resource.ListPolicy
	PollInterval time.Duration
	LogLevel     string
	Cache        CacheConfig
	Tracing      TracingConfig
}

// CacheConfig configures the optional Redis response cache.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Enabled reports whether a Redis address was configured.
func (c CacheConfig) Enabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// Enabled reports whether an OTLP endpoint was configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.OTLPEndpoint) != ""
}

const (
	defaultConfigPath  = "~/.config/episodes/config.toml"
	defaultEpisodesURL = "http://localhost:8000/episodes.json"
	defaultTimeout     = 5 * time.Second
	defaultCacheTTL    = time.Minute
	defaultLogLevel    = "info"
	defaultServiceName = "episodes"
)

// Environment variables that override file values.
const (
	EnvEpisodesURL  = "EPISODES_URL"
	EnvRedisAddr    = "EPISODES_REDIS_ADDR"
	EnvOTLPEndpoint = "EPISODES_OTLP_ENDPOINT"
	EnvLogLevel     = "EPISODES_LOG_LEVEL"
)

type rawConfig struct {
	EpisodesURL  string `toml:"episodes_url"`
	Timeout      string `toml:"timeout"`
	UserAgent    string `toml:"user_agent"`
	ListPolicy   string `toml:"list_policy"`
	PollInterval string `toml:"poll_interval"`
	LogLevel     string `toml:"log_level"`
	Cache        struct {
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
		TTL           string `toml:"ttl"`
	} `toml:"cache"`
	Tracing struct {
		OTLPEndpoint string `toml:"otlp_endpoint"`
		ServiceName  string `toml:"service_name"`
	} `toml:"tracing"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		EpisodesURL: defaultEpisodesURL,
		Timeout:     defaultTimeout,
		ListPolicy:  resource.FailFast,
		LogLevel:    defaultLogLevel,
		Cache:       CacheConfig{TTL: defaultCacheTTL},
		Tracing:     TracingConfig{ServiceName: defaultServiceName},
	}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing. Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.merge(raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	resolved, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(resolved); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(resolved); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func (c *Config) merge(raw rawConfig) error {
	if v := strings.TrimSpace(raw.EpisodesURL); v != "" {
		c.EpisodesURL = v
	}
	if v := strings.TrimSpace(raw.UserAgent); v != "" {
		c.UserAgent = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}

	policy, err := resource.ParseListPolicy(raw.ListPolicy)
	if err != nil {
		return err
	}
	c.ListPolicy = policy

	if err := parseDuration("timeout", raw.Timeout, &c.Timeout); err != nil {
		return err
	}
	if err := parseDuration("poll_interval", raw.PollInterval, &c.PollInterval); err != nil {
		return err
	}

	c.Cache.RedisAddr = strings.TrimSpace(raw.Cache.RedisAddr)
	c.Cache.RedisPassword = raw.Cache.RedisPassword
	if raw.Cache.RedisDB < 0 {
		return fmt.Errorf("cache.redis_db must not be negative")
	}
	c.Cache.RedisDB = raw.Cache.RedisDB
	if err := parseDuration("cache.ttl", raw.Cache.TTL, &c.Cache.TTL); err != nil {
		return err
	}

	c.Tracing.OTLPEndpoint = strings.TrimSpace(raw.Tracing.OTLPEndpoint)
	if v := strings.TrimSpace(raw.Tracing.ServiceName); v != "" {
		c.Tracing.ServiceName = v
	}
	return nil
}

func parseDuration(name, value string, dest *time.Duration) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		// Bare integers are seconds.
		secs, convErr := strconv.Atoi(trimmed)
		if convErr != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		d = time.Duration(secs) * time.Second
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	*dest = d
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvEpisodesURL)); v != "" {
		cfg.EpisodesURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOTLPEndpoint)); v != "" {
		cfg.Tracing.OTLPEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
