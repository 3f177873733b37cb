// Package config defines and loads the service configuration from YAML with
// environment-variable expansion.
package config

import (
	"errors"
	"fmt"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Store      StoreConfig      `yaml:"store"`
	Extraction ExtractionConfig `yaml:"extraction"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// ListenAddr is the address the HTTP server binds to, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

// LLMConfig configures the upstream model.
type LLMConfig struct {
	// Provider selects the backend: "openai" for the native OpenAI client
	// (or any OpenAI-compatible gateway via base_url), or one of the
	// any-llm backends: "anthropic", "gemini", "ollama", "deepseek",
	// "mistral", "groq".
	Provider string `yaml:"provider"`

	// APIKey authenticates against the provider.
	APIKey string `yaml:"api_key"`

	// BaseURL optionally overrides the provider endpoint.
	BaseURL string `yaml:"base_url"`

	// Model is the model identifier, e.g. "gpt-4o-mini".
	Model string `yaml:"model"`

	// Temperature is the reply-generation sampling temperature.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps reply length. Zero selects the service default.
	MaxTokens int `yaml:"max_tokens"`
}

// StoreConfig configures persistence.
type StoreConfig struct {
	// PostgresDSN is the database connection string. Empty selects the
	// in-memory store (development only; data is lost on restart).
	PostgresDSN string `yaml:"postgres_dsn"`
}

// ExtractionConfig configures the knowledge extraction passes.
type ExtractionConfig struct {
	// HeuristicEnabled toggles the regex name/keyword pass.
	HeuristicEnabled bool `yaml:"heuristic_enabled"`

	// LLMEnabled toggles the schema-constrained extraction pass.
	LLMEnabled bool `yaml:"llm_enabled"`

	// Stopwords overrides the default capitalized-word stoplist when non-empty.
	Stopwords []string `yaml:"stopwords"`

	// EventKeywords overrides the default event keyword list when non-empty.
	EventKeywords []string `yaml:"event_keywords"`
}

// Default returns the configuration defaults applied before file values.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
			LogLevel:   "info",
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   600,
		},
		Extraction: ExtractionConfig{
			HeuristicEnabled: true,
			LLMEnabled:       true,
		},
	}
}

// Validate checks that the configuration is complete enough to start.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.ListenAddr == "" {
		errs = append(errs, fmt.Errorf("server.listen_addr is required"))
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("server.log_level %q is not one of debug, info, warn, error", c.Server.LogLevel))
	}
	if c.LLM.Provider == "" {
		errs = append(errs, fmt.Errorf("llm.provider is required"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, fmt.Errorf("llm.model is required"))
	}
	if c.LLM.APIKey == "" && c.LLM.Provider != "ollama" {
		errs = append(errs, fmt.Errorf("llm.api_key is required for provider %q", c.LLM.Provider))
	}
	return errors.Join(errs...)
}
