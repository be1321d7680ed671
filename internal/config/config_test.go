package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/pkg/validator/interrupt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, config.StoreMemory, cfg.Store.Type)
	assert.Equal(t, "intake:", cfg.Store.Redis.Prefix)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, "gpt-4", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 3, cfg.Flow.MaxAttempts)
	assert.Equal(t, 2026, cfg.Vehicle.MaxYear)
	assert.True(t, cfg.Vehicle.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.PII.Patterns)
	assert.Equal(t, interrupt.DefaultQuotesURL, cfg.Interrupt.QuotesURL)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
server:
  port: 9090
store:
  type: file
  path: /tmp/sessions
pii:
  patterns: ["^email$", "^full_name$"]
llm:
  model: gpt-4o-mini
  timeout: 5s
flow:
  max_attempts: 2
interrupt:
  quotes_url: ""
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, config.StoreFile, cfg.Store.Type)
	assert.Equal(t, "/tmp/sessions", cfg.Store.Path)
	assert.Equal(t, []string{"^email$", "^full_name$"}, cfg.PII.Patterns)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.Flow.MaxAttempts)
	assert.Empty(t, cfg.Interrupt.QuotesURL, "an empty quotes_url selects the canned response")
	assert.Equal(t, 3, cfg.LLM.MaxRetries, "keys missing from the file keep their default")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "llm:\n  model: from-file\n")
	t.Setenv("INTAKE_LLM_API_KEY", "sk-test")
	t.Setenv("INTAKE_LLM_MODEL", "from-env")
	t.Setenv("INTAKE_STORE_REDIS_ADDR", "redis:6380")
	t.Setenv("INTAKE_FLOW_MAX_ATTEMPTS", "5")
	t.Setenv("INTAKE_INTERRUPT_KEYWORDS", "help, agent")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "from-env", cfg.LLM.Model)
	assert.Equal(t, "redis:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, 5, cfg.Flow.MaxAttempts)
	assert.Equal(t, []string{"help", "agent"}, cfg.Interrupt.Keywords)
}

func TestLoad_SubstitutesEnvVars(t *testing.T) {
	t.Setenv("MY_SECRET_KEY", "sk-from-ref")
	path := writeFile(t, "llm:\n  api_key: ${MY_SECRET_KEY}\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-ref", cfg.LLM.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Missing explicit file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid values", func(t *testing.T) {
		path := writeFile(t, "store:\n  type: postgres\nflow:\n  max_attempts: 0\n")
		_, err := config.Load(path)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.ErrorContains(t, err, "store.type")
		assert.ErrorContains(t, err, "flow.max_attempts")
	})
}

func TestConfig_ValidatorTimeout(t *testing.T) {
	t.Run("Derived from the LLM retry budget", func(t *testing.T) {
		cfg, err := config.Load(writeFile(t, "log:\n  level: info\n"))
		require.NoError(t, err)
		assert.Zero(t, cfg.Flow.ValidatorTimeout)
		// 3 calls of 30s plus 1s and 2s of backoff.
		assert.Equal(t, 93*time.Second, cfg.ValidatorTimeout())
	})

	t.Run("Explicit value wins", func(t *testing.T) {
		cfg, err := config.Load(writeFile(t, "flow:\n  validator_timeout: 2m\n"))
		require.NoError(t, err)
		assert.Equal(t, 2*time.Minute, cfg.ValidatorTimeout())
	})

	t.Run("Registry lookups fit too", func(t *testing.T) {
		cfg, err := config.Load(writeFile(t, "llm:\n  timeout: 1s\n  max_retries: 1\nvehicle:\n  timeout: 10s\n"))
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, cfg.ValidatorTimeout())
	})

	t.Run("Shorter than the retry budget", func(t *testing.T) {
		t.Setenv("INTAKE_LLM_API_KEY", "sk-test")
		path := writeFile(t, "llm:\n  timeout: 30s\n  max_retries: 3\nflow:\n  validator_timeout: 30s\n")
		_, err := config.Load(path)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.ErrorContains(t, err, "flow.validator_timeout")
	})

	t.Run("Short timeout without an LLM", func(t *testing.T) {
		cfg, err := config.Load(writeFile(t, "flow:\n  validator_timeout: 5s\n"))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.ValidatorTimeout())
	})
}
