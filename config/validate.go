package config

import (
	"fmt"
	"strings"
)

var (
	providers = []string{"openai", "deepseek", "anthropic", "mock"}
	stores    = []string{"memory", "sqlite"}
	levels    = []string{"debug", "info", "warn", "error"}
	formats   = []string{"text", "json"}
)

// Validate checks cross-field rules. Load calls it.
func (c *Config) Validate() error {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if !oneOf(c.LLM.Provider, providers) {
		return fmt.Errorf("llm.provider %q not supported (want one of %s)", c.LLM.Provider, strings.Join(providers, ", "))
	}
	if c.LLM.Provider != "mock" && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required for provider %s", c.LLM.Provider)
	}
	// DeepSeek 走 OpenAI 兼容接口，必须给出 base_url。
	if c.LLM.Provider == "deepseek" && c.LLM.BaseURL == "" {
		return fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be > 0 (got %d)", c.LLM.MaxTokens)
	}

	if !oneOf(c.Idempotency.Store, stores) {
		return fmt.Errorf("idempotency.store %q not supported (want memory or sqlite)", c.Idempotency.Store)
	}
	if c.Idempotency.Store == "sqlite" && c.Idempotency.Path == "" {
		return fmt.Errorf("idempotency.path is required for the sqlite store")
	}

	if (c.LinkedIn.AccessToken == "") != (c.LinkedIn.AuthorURN == "") {
		return fmt.Errorf("linkedin.access_token and linkedin.author_urn must be set together")
	}
	if c.Google.Enabled && (c.Google.CredentialsFile == "" || c.Google.TokenFile == "") {
		return fmt.Errorf("google.credentials_file and google.token_file are required when google is enabled")
	}

	if !oneOf(strings.ToLower(c.Log.Level), levels) {
		return fmt.Errorf("log.level %q not supported", c.Log.Level)
	}
	if !oneOf(strings.ToLower(c.Log.Format), formats) {
		return fmt.Errorf("log.format %q not supported", c.Log.Format)
	}
	return nil
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
