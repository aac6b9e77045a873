// Package config loads the process configuration from defaults, an
// optional YAML file, and environment variable overrides, in that
// order of increasing priority.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Environment string `yaml:"environment" validate:"oneof=development staging production"`

	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Address         string        `yaml:"address" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CacheConfig holds every knob of the cache-consistency core.
type CacheConfig struct {
	EnableL0 bool `yaml:"enable_l0"`
	EnableL1 bool `yaml:"enable_l1"`

	// Per-category L0 capacities. Singletons are always capacity 1.
	L0PostByIDCap       int `yaml:"l0_post_by_id_cap" validate:"min=1"`
	L0PostBySlugCap     int `yaml:"l0_post_by_slug_cap" validate:"min=1"`
	L0PageByIDCap       int `yaml:"l0_page_by_id_cap" validate:"min=1"`
	L0PageBySlugCap     int `yaml:"l0_page_by_slug_cap" validate:"min=1"`
	L0APIKeyByPrefixCap int `yaml:"l0_api_key_by_prefix_cap" validate:"min=1"`
	L0PostListCap       int `yaml:"l0_post_list_cap" validate:"min=1"`

	L1ResponseLimit int `yaml:"l1_response_limit" validate:"min=1"`
	L1MaxBodyBytes  int `yaml:"l1_max_body_bytes" validate:"min=1"`

	EventQueueCapacity  int           `yaml:"event_queue_capacity" validate:"min=0"`
	AutoConsumeInterval time.Duration `yaml:"auto_consume_interval"`
	ConsumeBatchLimit   int           `yaml:"consume_batch_limit" validate:"min=1"`
	WarmDebounce        time.Duration `yaml:"warm_debounce"`
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// TracingConfig holds the tracing settings.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			EnableL0:            true,
			EnableL1:            true,
			L0PostByIDCap:       512,
			L0PostBySlugCap:     512,
			L0PageByIDCap:       128,
			L0PageBySlugCap:     128,
			L0APIKeyByPrefixCap: 256,
			L0PostListCap:       256,
			L1ResponseLimit:     1024,
			L1MaxBodyBytes:      2 << 20,
			EventQueueCapacity:  1024,
			AutoConsumeInterval: 2 * time.Second,
			ConsumeBatchLimit:   256,
			WarmDebounce:        3 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			SampleRate: 0.1,
		},
	}
}

// Load builds the configuration from defaults, the file named by
// CONFIG_FILE (if any), and environment overrides, then validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays a YAML file on the configuration.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables, the highest priority source.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("ENABLE_L0_CACHE"); v != "" {
		cfg.Cache.EnableL0 = parseBool(v)
	}
	if v := os.Getenv("ENABLE_L1_CACHE"); v != "" {
		cfg.Cache.EnableL1 = parseBool(v)
	}
	if v := parseIntEnv("L1_RESPONSE_LIMIT"); v > 0 {
		cfg.Cache.L1ResponseLimit = v
	}
	if v := parseIntEnv("L1_MAX_BODY_BYTES"); v > 0 {
		cfg.Cache.L1MaxBodyBytes = v
	}
	if v := parseIntEnv("EVENT_QUEUE_CAPACITY"); v > 0 {
		cfg.Cache.EventQueueCapacity = v
	}
	if v := parseIntEnv("AUTO_CONSUME_INTERVAL_MS"); v > 0 {
		cfg.Cache.AutoConsumeInterval = time.Duration(v) * time.Millisecond
	}
	if v := parseIntEnv("CONSUME_BATCH_LIMIT"); v > 0 {
		cfg.Cache.ConsumeBatchLimit = v
	}
	if v := parseIntEnv("WARM_DEBOUNCE_MS"); v > 0 {
		cfg.Cache.WarmDebounce = time.Duration(v) * time.Millisecond
	}
	if v := os.Getenv("ENABLE_TRACING"); v != "" {
		cfg.Tracing.Enabled = parseBool(v)
	}
	if v := os.Getenv("TRACING_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
	}
}

// Validate checks the configuration with struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}

func parseIntEnv(key string) int {
	v, _ := strconv.Atoi(os.Getenv(key))
	return v
}
