// Package config provides configuration management for the Recall server.
// It handles loading and parsing the YAML configuration file, applying
// environment variable overrides for provider credentials, and provides
// structured access to application settings including server address,
// search cache policy, and session parameters.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded from a YAML file
// with environment overrides applied on top.
type Config struct {
	// Server holds HTTP listener settings.
	Server ServerConfig `yaml:"server" json:"server"`

	// Search holds web-search provider settings and the query cache policy.
	Search SearchConfig `yaml:"search" json:"search"`

	// Memory holds memory-service settings.
	Memory MemoryConfig `yaml:"memory" json:"memory"`

	// OpenAI holds model-provider settings.
	OpenAI OpenAIConfig `yaml:"openai" json:"openai"`

	// Auth holds OAuth sign-in and session settings.
	Auth AuthConfig `yaml:"auth" json:"auth"`

	// Logging holds log output settings.
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// RequestLog enables or disables detailed request logging functionality.
	RequestLog bool `yaml:"request-log" json:"request-log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr" json:"addr"`

	// ReadTimeout bounds request header/body reads. Zero means no timeout,
	// which the streaming relay requires on the write side.
	ReadTimeout time.Duration `yaml:"read-timeout,omitempty" json:"read-timeout,omitempty"`
}

// SearchConfig holds web-search provider settings.
type SearchConfig struct {
	// APIKey is the search provider subscription token.
	// Overridden by SEARCH_API_KEY.
	APIKey string `yaml:"api-key,omitempty" json:"api-key,omitempty"`

	// Endpoint is the search API base URL. Defaults to the Brave web search endpoint.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`

	// CacheTTL is how long a query's results are served from cache.
	// Duplicate queries inside this window never reach the provider.
	CacheTTL time.Duration `yaml:"cache-ttl,omitempty" json:"cache-ttl,omitempty"`

	// CacheMaxSize is the maximum number of cached query envelopes.
	CacheMaxSize int `yaml:"cache-max-size,omitempty" json:"cache-max-size,omitempty"`
}

// MemoryConfig holds memory-service settings.
type MemoryConfig struct {
	// APIKey is the memory service bearer token.
	// Overridden by SUPERMEMORY_API_KEY.
	APIKey string `yaml:"api-key,omitempty" json:"api-key,omitempty"`

	// BaseURL is the memory service base URL.
	BaseURL string `yaml:"base-url,omitempty" json:"base-url,omitempty"`

	// DiscoveryTag is the extra container tag applied to chat-turn
	// grounding searches alongside the user identity tag.
	DiscoveryTag string `yaml:"discovery-tag,omitempty" json:"discovery-tag,omitempty"`
}

// OpenAIConfig holds model-provider settings.
type OpenAIConfig struct {
	// APIKey is the model provider key. Overridden by OPENAI_API_KEY.
	APIKey string `yaml:"api-key,omitempty" json:"api-key,omitempty"`

	// Model is the chat model used for answers.
	Model string `yaml:"model,omitempty" json:"model,omitempty"`

	// BaseURL optionally points at an OpenAI-compatible endpoint.
	BaseURL string `yaml:"base-url,omitempty" json:"base-url,omitempty"`
}

// AuthConfig holds OAuth sign-in and session settings.
type AuthConfig struct {
	// GoogleClientID is the OAuth client id. Overridden by GOOGLE_CLIENT_ID.
	GoogleClientID string `yaml:"google-client-id,omitempty" json:"google-client-id,omitempty"`

	// GoogleClientSecret is the OAuth client secret.
	// Overridden by GOOGLE_CLIENT_SECRET.
	GoogleClientSecret string `yaml:"google-client-secret,omitempty" json:"google-client-secret,omitempty"`

	// RedirectURL is the externally reachable OAuth callback URL.
	RedirectURL string `yaml:"redirect-url,omitempty" json:"redirect-url,omitempty"`

	// SessionSecret signs session cookies. Overridden by AUTH_SECRET.
	SessionSecret string `yaml:"session-secret,omitempty" json:"session-secret,omitempty"`

	// SessionTTL is how long a signed session cookie stays valid.
	SessionTTL time.Duration `yaml:"session-ttl,omitempty" json:"session-ttl,omitempty"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the logrus level name (debug, info, warn, error).
	Level string `yaml:"level,omitempty" json:"level,omitempty"`

	// File, when set, routes logs through a rotating file writer instead of stderr.
	File string `yaml:"file,omitempty" json:"file,omitempty"`

	// MaxSizeMB is the rotation threshold for the log file.
	MaxSizeMB int `yaml:"max-size-mb,omitempty" json:"max-size-mb,omitempty"`

	// MaxBackups is how many rotated files to keep.
	MaxBackups int `yaml:"max-backups,omitempty" json:"max-backups,omitempty"`
}

// Default returns a config with every non-credential knob set to its default.
// Provider credentials intentionally default to empty: their absence is a
// request-time failure, not a startup failure.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Search: SearchConfig{
			Endpoint:     "https://api.search.brave.com/res/v1/web/search",
			CacheTTL:     time.Hour,
			CacheMaxSize: 1000,
		},
		Memory: MemoryConfig{
			BaseURL:      "https://api.supermemory.ai/v3",
			DiscoveryTag: "opensearch",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Auth: AuthConfig{
			RedirectURL: "http://localhost:8080/auth/callback",
			SessionTTL:  30 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// Load reads the YAML file at path (when it exists), applies environment
// overrides, and validates shape. A missing file is not an error: the
// service can run entirely from environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
			}
		case os.IsNotExist(err):
			// Environment-only operation.
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays provider credentials from the environment. Environment
// values always win over file values so deployments never bake keys into YAML.
func (c *Config) applyEnv() {
	overlay := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	overlay(&c.Search.APIKey, "SEARCH_API_KEY")
	overlay(&c.Memory.APIKey, "SUPERMEMORY_API_KEY")
	overlay(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	overlay(&c.Auth.GoogleClientID, "GOOGLE_CLIENT_ID")
	overlay(&c.Auth.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	overlay(&c.Auth.SessionSecret, "AUTH_SECRET")
}

// Validate checks structural settings. Credential presence is deliberately
// not checked here; handlers report missing keys per request.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("config: server.addr must not be empty")
	}
	if c.Search.CacheTTL < 0 {
		return fmt.Errorf("config: search.cache-ttl must not be negative")
	}
	if c.Search.CacheMaxSize < 0 {
		return fmt.Errorf("config: search.cache-max-size must not be negative")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("config: auth.session-ttl must be positive")
	}
	return nil
}
