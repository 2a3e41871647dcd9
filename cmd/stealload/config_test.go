package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andrej220/go-utils/stealpool/internal/workload"
)

func TestParseConfig_YAML(t *testing.T) {
	data := []byte(`
pool:
  workers: 3
  pin: true
  cpus: [0, 2]
workload:
  tasks: 500
  max_sleep: 5ms
  wait: true
`)
	cfg, err := parseConfig(data, yaml.Parser())
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Pool.Workers)
	assert.True(t, cfg.Pool.Pin)
	assert.Equal(t, []int{0, 2}, cfg.Pool.CPUs)
	assert.Equal(t, 500, cfg.Workload.Tasks)
	assert.Equal(t, 5*time.Millisecond, cfg.Workload.MaxSleep)
	assert.True(t, cfg.Workload.Wait)

	// Keys missing from the file keep their defaults.
	assert.Equal(t, workload.DefaultProducers, cfg.Workload.Producers)
	assert.Equal(t, workload.DefaultRespawnProb, cfg.Workload.RespawnProb)
	assert.Equal(t, workload.DefaultDuration, cfg.Workload.Duration)
}

func TestParseConfig_JSON(t *testing.T) {
	data := []byte(`{"workload": {"producers": 4, "respawn": 0.25, "duration": "2s"}}`)
	cfg, err := parseConfig(data, json.Parser())
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workload.Producers)
	assert.Equal(t, 0.25, cfg.Workload.RespawnProb)
	assert.Equal(t, 2*time.Second, cfg.Workload.Duration)
	assert.Equal(t, workload.DefaultTasks, cfg.Workload.Tasks)
	assert.Zero(t, cfg.Pool.Workers)
}

func TestParseConfig_Malformed(t *testing.T) {
	_, err := parseConfig([]byte(`{"pool": `), json.Parser())
	assert.ErrorIs(t, err, errLoadConfig)
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		cfg, err := loadConfig("")
		require.NoError(t, err)
		assert.Equal(t, defaultConfig(), cfg)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := loadConfig("load.toml")
		assert.ErrorIs(t, err, errUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, errLoadConfig)
	})

	t.Run("yml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "load.YML")
		require.NoError(t, os.WriteFile(path, []byte("pool:\n  workers: 2\n"), 0o600))

		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Pool.Workers)
	})
}
