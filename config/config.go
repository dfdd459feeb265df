// Package config loads the assistant configuration from YAML and env.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	LLM         LLMConfig         `yaml:"llm"`
	Google      GoogleConfig      `yaml:"google"`
	Email       EmailConfig       `yaml:"email"`
	LinkedIn    LinkedInConfig    `yaml:"linkedin"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
	Analytics   AnalyticsConfig   `yaml:"analytics"`
	Profile     ProfileConfig     `yaml:"profile"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"            env:"SERVER_ADDR"            env-default:":8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout"    env:"SERVER_READ_TIMEOUT"    env-default:"15s"`
	WriteTimeout   time.Duration `yaml:"write_timeout"   env:"SERVER_WRITE_TIMEOUT"   env-default:"180s"`
	SessionTimeout time.Duration `yaml:"session_timeout" env:"SERVER_SESSION_TIMEOUT" env-default:"60s"`
}

// LLMConfig selects the text-completion provider.
type LLMConfig struct {
	Provider  string `yaml:"provider"   env:"LLM_PROVIDER"   env-default:"openai"`
	Model     string `yaml:"model"      env:"LLM_MODEL"`
	APIKey    string `yaml:"api_key"    env:"LLM_API_KEY"`
	BaseURL   string `yaml:"base_url"   env:"LLM_BASE_URL"`
	MaxTokens int64  `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`
}

// GoogleConfig points at the OAuth desktop credentials and saved token.
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file" env:"GOOGLE_CREDENTIALS_FILE" env-default:"credentials.json"`
	TokenFile       string `yaml:"token_file"       env:"GOOGLE_TOKEN_FILE"       env-default:"token.json"`
	CalendarID      string `yaml:"calendar_id"      env:"GOOGLE_CALENDAR_ID"      env-default:"primary"`
	Enabled         bool   `yaml:"enabled"          env:"GOOGLE_ENABLED"          env-default:"false"`
}

type EmailConfig struct {
	From             string `yaml:"from"              env:"EMAIL_FROM"`
	DefaultRecipient string `yaml:"default_recipient" env:"EMAIL_DEFAULT_RECIPIENT" env-default:"default@example.com"`
}

type LinkedInConfig struct {
	AccessToken string `yaml:"access_token" env:"LINKEDIN_ACCESS_TOKEN"`
	AuthorURN   string `yaml:"author_urn"   env:"LINKEDIN_AUTHOR_URN"`
	BaseURL     string `yaml:"base_url"     env:"LINKEDIN_BASE_URL" env-default:"https://api.linkedin.com"`
}

// Enabled reports whether posting is configured.
func (l LinkedInConfig) Enabled() bool {
	return l.AccessToken != "" && l.AuthorURN != ""
}

// IdempotencyConfig selects where sent-email keys live.
type IdempotencyConfig struct {
	Store string `yaml:"store" env:"IDEMPOTENCY_STORE" env-default:"memory"`
	Path  string `yaml:"path"  env:"IDEMPOTENCY_PATH"  env-default:"data/actions.db"`
}

type AnalyticsConfig struct {
	CacheTTL       time.Duration `yaml:"cache_ttl"       env:"ANALYTICS_CACHE_TTL"       env-default:"1h"`
	ScraperTimeout time.Duration `yaml:"scraper_timeout" env:"ANALYTICS_SCRAPER_TIMEOUT" env-default:"15s"`
	UserAgent      string        `yaml:"user_agent"      env:"ANALYTICS_USER_AGENT"`
}

type ProfileConfig struct {
	Path string `yaml:"path" env:"PROFILE_PATH"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
