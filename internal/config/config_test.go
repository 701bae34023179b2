package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ChatModeSimulate, cfg.Chat.Mode)
	assert.Equal(t, 800*time.Millisecond, cfg.Chat.SimulatedDelay())
	assert.Equal(t, 2000, cfg.Chat.MaxMessageLength)
	assert.Equal(t, 1200*time.Millisecond, cfg.Auth.SimulatedDelay())
	assert.Equal(t, 1800, cfg.Auth.RedirectDelayMs)
	assert.Equal(t, 5000, cfg.Notify.DefaultDurationMs)
	assert.Equal(t, "top-center", cfg.Notify.Position)
	assert.Equal(t, "chat_session", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL())
	assert.Equal(t, GateBackendLocal, cfg.Gate.Backend)
	assert.Equal(t, time.Duration(0), cfg.LLM.Timeout())
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: \"9090\"\nchat:\n  mode: live\n  simulated_delay_ms: 10\nllm:\n  model: test-model\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("CHATPANEL_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CHATPANEL_GATE_BACKEND", "redis")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, ChatModeLive, cfg.Chat.Mode)
	assert.Equal(t, 10*time.Millisecond, cfg.Chat.SimulatedDelay())
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, GateBackendRedis, cfg.Gate.Backend)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	t.Setenv("CHATPANEL_CHAT_MODE", "stream")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsRedisGateWithoutLease(t *testing.T) {
	t.Setenv("CHATPANEL_GATE_BACKEND", "redis")
	t.Setenv("CHATPANEL_GATE_LEASE_SECONDS", "0")
	_, err := Load("")
	assert.ErrorContains(t, err, "gate.lease_seconds")
}

func TestInitPanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("CHATPANEL_GATE_BACKEND", "etcd")
	assert.Panics(t, func() { Init("") })
}
