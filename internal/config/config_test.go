package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.Cache.EnableL0)
	assert.True(t, cfg.Cache.EnableL1)
	assert.Equal(t, 1024, cfg.Cache.EventQueueCapacity)
}

func TestLoad_DefaultsWithoutSources(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("ENABLE_L1_CACHE", "false")
	t.Setenv("WARM_DEBOUNCE_MS", "500")
	t.Setenv("AUTO_CONSUME_INTERVAL_MS", "250")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.False(t, cfg.Cache.EnableL1)
	assert.True(t, cfg.Cache.EnableL0)
	assert.Equal(t, 500*time.Millisecond, cfg.Cache.WarmDebounce)
	assert.Equal(t, 250*time.Millisecond, cfg.Cache.AutoConsumeInterval)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_YAMLFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
environment: staging
server:
  address: ":3000"
cache:
  l1_response_limit: 64
  event_queue_capacity: 16
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, ":3000", cfg.Server.Address)
	assert.Equal(t, 64, cfg.Cache.L1ResponseLimit)
	assert.Equal(t, 16, cfg.Cache.EventQueueCapacity)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched keys keep their defaults.
	assert.Equal(t, 512, cfg.Cache.L0PostByIDCap)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: staging\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_MissingFileFails(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache: [not a map"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()

	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	t.Run("Should reject unknown environment", func(t *testing.T) {
		cfg := Default()
		cfg.Environment = "qa"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Should reject zero cache capacities", func(t *testing.T) {
		cfg := Default()
		cfg.Cache.L0PostByIDCap = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("Should reject unknown log level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Should reject out-of-range sample rate", func(t *testing.T) {
		cfg := Default()
		cfg.Tracing.SampleRate = 1.5
		assert.Error(t, cfg.Validate())
	})
}

func TestWatcher_NotifiesSubscribersOnReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  enable_l1: true\n"), 0o600))

	watcher, err := NewWatcher(path, Default(), nil)
	require.NoError(t, err)

	got := make(chan *Config, 1)
	watcher.Subscribe(func(cfg *Config) {
		select {
		case got <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  enable_l1: false\n"), 0o600))

	select {
	case cfg := <-got:
		assert.False(t, cfg.Cache.EnableL1)
		assert.Same(t, cfg, watcher.Current())
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber was never notified of the reload")
	}
}
