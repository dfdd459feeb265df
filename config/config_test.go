package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// inTempDir keeps a stray .env or config.yaml in the package dir out of the test.
func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const validYAML = `
server:
  addr: "127.0.0.1:9090"
  read_timeout: "5s"
llm:
  provider: anthropic
  model: claude-sonnet-4-5
  api_key: sk-test
idempotency:
  store: sqlite
  path: /tmp/keys.db
analytics:
  cache_ttl: 30m
log:
  level: debug
  format: json
`

func TestLoadFromYAML(t *testing.T) {
	inTempDir(t)
	cfg, err := Load(writeYAML(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 180*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, int64(1024), cfg.LLM.MaxTokens)
	assert.Equal(t, "sqlite", cfg.Idempotency.Store)
	assert.Equal(t, 30*time.Minute, cfg.Analytics.CacheTTL)
	assert.Equal(t, "default@example.com", cfg.Email.DefaultRecipient)
	assert.Equal(t, "primary", cfg.Google.CalendarID)
	assert.False(t, cfg.LinkedIn.Enabled())
}

func TestEnvOverridesYAML(t *testing.T) {
	inTempDir(t)
	t.Setenv("LLM_PROVIDER", "mock")
	t.Setenv("SERVER_ADDR", ":7070")
	cfg, err := Load(writeYAML(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadEnvOnly(t *testing.T) {
	inTempDir(t)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LLM_PROVIDER", "mock")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Idempotency.Store)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	inTempDir(t)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LLM_PROVIDER", "")
	require.NoError(t, os.Unsetenv("LLM_PROVIDER"))
	require.NoError(t, os.WriteFile(".env", []byte("LLM_PROVIDER=mock\nLOG_LEVEL=warn\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("LOG_LEVEL")
		_ = os.Unsetenv("LLM_PROVIDER")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestExplicitMissingFile(t *testing.T) {
	inTempDir(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			LLM:         LLMConfig{Provider: "openai", APIKey: "k", MaxTokens: 100},
			Idempotency: IdempotencyConfig{Store: "memory"},
			Log:         LogConfig{Level: "info", Format: "text"},
		}
	}
	ok := base()
	require.NoError(t, ok.Validate())

	cases := map[string]func(*Config){
		"unknown provider":  func(c *Config) { c.LLM.Provider = "llama" },
		"missing key":       func(c *Config) { c.LLM.APIKey = "" },
		"deepseek base url": func(c *Config) { c.LLM.Provider = "deepseek" },
		"max tokens":        func(c *Config) { c.LLM.MaxTokens = 0 },
		"store kind":        func(c *Config) { c.Idempotency.Store = "redis" },
		"sqlite path":       func(c *Config) { c.Idempotency.Store = "sqlite" },
		"half linkedin":     func(c *Config) { c.LinkedIn.AccessToken = "t" },
		"google files":      func(c *Config) { c.Google.Enabled = true },
		"log level":         func(c *Config) { c.Log.Level = "trace" },
		"log format":        func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}

	mock := base()
	mock.LLM = LLMConfig{Provider: " Mock ", MaxTokens: 1}
	require.NoError(t, mock.Validate())
	assert.Equal(t, "mock", mock.LLM.Provider)
}
