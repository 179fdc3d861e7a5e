package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := LoadClient("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Node.Host)
	assert.Equal(t, 8470, cfg.Node.Port)
	assert.Equal(t, 5*time.Second, cfg.Bridge.ConnectTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Bridge.LoopStartTimeout)
	assert.Equal(t, 2*time.Second, cfg.Calls.Metadata)
	assert.Equal(t, 30*time.Second, cfg.Calls.Submit)
	assert.Equal(t, "adaptive", cfg.Chunking.Strategy)
	assert.Equal(t, 1048576, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Jobs.PollInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadClient_FromFile(t *testing.T) {
	content := `
node:
  host: node.example.net
  port: 9000
bridge:
  connect_timeout: 2s
calls:
  submit: 45s
logging:
  level: debug
  format: text
`
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadClient(path)
	require.NoError(t, err)

	assert.Equal(t, "node.example.net", cfg.Node.Host)
	assert.Equal(t, 9000, cfg.Node.Port)
	assert.Equal(t, 2*time.Second, cfg.Bridge.ConnectTimeout)
	assert.Equal(t, 45*time.Second, cfg.Calls.Submit)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unspecified values keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Bridge.HeartbeatInterval)
}

func TestLoadClient_MissingExplicitFile(t *testing.T) {
	_, err := LoadClient(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
