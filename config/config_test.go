package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `environment: "staging"

nodes:
  urls:
    - "https://node1.example.com"
    - "https://node2.example.com"
    - "https://node3.example.com"
  min_node_count: 2

chain:
  rpc: "https://yellowstone-rpc.litprotocol.com"
  chain_id: 175177

logging:
  level: "debug"
  format: "text"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, []string{"https://node1.example.com", "https://node2.example.com", "https://node3.example.com"}, cfg.Nodes.URLs)
	assert.Equal(t, 2, cfg.Nodes.MinNodeCount)
	assert.Equal(t, uint64(175177), cfg.Chain.ChainID)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Chain.MaxRetries, "setDefaults should fill MaxRetries")
	assert.Equal(t, 30*time.Second, cfg.Nodes.PerNodeTimeout, "setDefaults should fill PerNodeTimeout")
}

func TestLoadFromFileMissingDefaultsMinNodeCount(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `nodes:
  urls:
    - "https://node1.example.com"
    - "https://node2.example.com"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Nodes.MinNodeCount, "MinNodeCount should default to the full node count")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "roundtrip.json")

	cfg := &Config{
		Environment: "production",
		Nodes: &NodesConfig{
			URLs:         []string{"https://node1.example.com"},
			MinNodeCount: 1,
		},
		Logging: &LoggingConfig{Level: "warn", Format: "json", Output: "stdout"},
	}

	require.NoError(t, SaveToFile(cfg, configPath))

	loaded, err := LoadFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Environment, loaded.Environment)
	assert.Equal(t, cfg.Nodes.URLs, loaded.Nodes.URLs)
	assert.Equal(t, cfg.Logging.Level, loaded.Logging.Level)
}

func TestConfigValidate(t *testing.T) {
	t.Run("rejects empty node set", func(t *testing.T) {
		cfg := &Config{Nodes: &NodesConfig{}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects min count above node count", func(t *testing.T) {
		cfg := &Config{Nodes: &NodesConfig{URLs: []string{"a", "b"}, MinNodeCount: 3}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("accepts a well-formed config", func(t *testing.T) {
		cfg := &Config{Nodes: &NodesConfig{URLs: []string{"a", "b"}, MinNodeCount: 2}}
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "development.yaml")

	configContent := `nodes:
  urls:
    - "https://node1.example.com"
logging:
  level: "info"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	os.Setenv("LIT_LOG_LEVEL", "debug")
	defer os.Unsetenv("LIT_LOG_LEVEL")

	cfg, err := Load(LoaderOptions{ConfigDir: tmpDir, Environment: "development"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
