package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "http://localhost:8080", cfg.Widget.ServerURL)
	assert.Equal(t, time.Duration(0), cfg.Widget.Timeout)
	assert.Equal(t, 20, cfg.Agent.MaxHistory)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`port: "9090"
provider: gemini
model: gemini-1.5-flash
agent:
  max_history: 5
widget:
  server_url: http://chat.internal:9090
  agent_name: support
  timeout: 30s
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.Model)
	assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	assert.Equal(t, "support", cfg.Widget.AgentName)
	assert.Equal(t, 30*time.Second, cfg.Widget.Timeout)
	assert.Equal(t, 5, cfg.Agent.MaxHistory)
}

func TestLoadConfig_MaxHistoryFromEnv(t *testing.T) {
	t.Setenv("AGENT_MAX_HISTORY", "3")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Agent.MaxHistory)
}

func TestLoadConfig_NegativeMaxHistory(t *testing.T) {
	t.Setenv("AGENT_MAX_HISTORY", "-1")
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "agent.max_history")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_UnknownProvider(t *testing.T) {
	t.Setenv("PROVIDER", "bard")
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "unknown provider")
}
