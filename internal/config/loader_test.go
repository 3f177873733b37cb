package config_test

import (
	"strings"
	"testing"

	"github.com/ebelyakova/zapomni/internal/config"
)

const validYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
llm:
  provider: openai
  api_key: sk-test
  model: gpt-4o-mini
store:
  postgres_dsn: postgres://localhost/zapomni
`

func TestLoadFromReaderAppliesFileValues(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" || cfg.Server.LogLevel != "debug" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Store.PostgresDSN != "postgres://localhost/zapomni" {
		t.Errorf("store = %+v", cfg.Store)
	}
}

func TestLoadFromReaderDefaults(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(`
llm:
  api_key: sk-test
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want default :8080", cfg.Server.ListenAddr)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.Provider != "openai" {
		t.Errorf("llm defaults not applied: %+v", cfg.LLM)
	}
	if !cfg.Extraction.HeuristicEnabled || !cfg.Extraction.LLMEnabled {
		t.Errorf("extraction defaults not applied: %+v", cfg.Extraction)
	}
}

func TestLoadFromReaderExpandsEnv(t *testing.T) {
	t.Setenv("TEST_ZAPOMNI_KEY", "sk-from-env")

	cfg, err := config.LoadFromReader(strings.NewReader(`
llm:
  api_key: ${TEST_ZAPOMNI_KEY}
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q", cfg.LLM.APIKey)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader(`
llm:
  api_key: sk-test
  tempreture: 0.5
`))
	if err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestValidateMissingAPIKey(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader(`
llm:
  provider: openai
`))
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Errorf("expected api_key validation error, got %v", err)
	}
}

func TestValidateOllamaNeedsNoKey(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader(`
llm:
  provider: ollama
  model: llama3
`))
	if err != nil {
		t.Errorf("ollama without api_key should validate, got %v", err)
	}
}

func TestValidateBadLogLevel(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader(`
server:
  log_level: loud
llm:
  api_key: sk-test
`))
	if err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Errorf("expected log_level validation error, got %v", err)
	}
}
