// Package config provides configuration management for the Recall
// summarization engine. Settings load from environment variables with the
// RECALL_ prefix, with an optional YAML file overlay for deployments that
// prefer file-based configuration. File values take precedence over
// environment values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the Recall engine.
type Config struct {
	Storage Storage   `yaml:"storage"`
	LLM     LLMConfig `yaml:"llm"`
	Engine  Engine    `yaml:"engine"`
	Notify  Notify    `yaml:"notify"`
}

// Storage contains database configuration.
type Storage struct {
	Engine      string `yaml:"engine"`       // Storage engine: sqlite, postgres (default: sqlite)
	SQLitePath  string `yaml:"sqlite_path"`  // Path to SQLite database file (default: ./data/recall.db)
	PostgresDSN string `yaml:"postgres_dsn"` // Postgres connection string
}

// LLMConfig contains generative text service configuration.
type LLMConfig struct {
	Provider        string `yaml:"provider"`          // ollama, openai, anthropic (default: ollama)
	TimeoutSeconds  int    `yaml:"timeout_seconds"`   // Per-request timeout (default: 60)
	OllamaURL       string `yaml:"ollama_url"`        // Ollama API URL (default: http://localhost:11434)
	OllamaModel     string `yaml:"ollama_model"`      // Ollama model name (default: qwen2.5:7b)
	OpenAIAPIKey    string `yaml:"openai_api_key"`    // OpenAI API key
	OpenAIModel     string `yaml:"openai_model"`      // OpenAI model name (default: gpt-4o-mini)
	OpenAIBaseURL   string `yaml:"openai_base_url"`   // OpenAI-compatible base URL override
	AnthropicAPIKey string `yaml:"anthropic_api_key"` // Anthropic API key
	AnthropicModel  string `yaml:"anthropic_model"`   // Anthropic model name
}

// Engine contains summarization engine tuning.
type Engine struct {
	// CompletionsPerSecond rate-limits calls to the generative service
	// across all clusters in a run (default: 2).
	CompletionsPerSecond float64 `yaml:"completions_per_second"`

	// CompletionBurst is the rate limiter burst size (default: 4).
	CompletionBurst int `yaml:"completion_burst"`
}

// Notify contains run-event notification settings.
type Notify struct {
	// EventsPath is the directory summarization run events are written to,
	// one JSON file per run. Empty disables run notification.
	EventsPath string `yaml:"events_path"`
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the RECALL_ prefix.
func LoadConfig() (*Config, error) {
	return buildBaseConfig(), nil
}

// LoadConfigFromFile loads configuration from environment variables, then
// overlays values from the given YAML file. Zero-valued file fields leave
// the env/default value in place.
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := buildBaseConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	cfg.merge(&overlay)
	return cfg, nil
}

// merge copies non-zero fields from overlay onto c.
func (c *Config) merge(overlay *Config) {
	mergeString(&c.Storage.Engine, overlay.Storage.Engine)
	mergeString(&c.Storage.SQLitePath, overlay.Storage.SQLitePath)
	mergeString(&c.Storage.PostgresDSN, overlay.Storage.PostgresDSN)

	mergeString(&c.LLM.Provider, overlay.LLM.Provider)
	mergeString(&c.LLM.OllamaURL, overlay.LLM.OllamaURL)
	mergeString(&c.LLM.OllamaModel, overlay.LLM.OllamaModel)
	mergeString(&c.LLM.OpenAIAPIKey, overlay.LLM.OpenAIAPIKey)
	mergeString(&c.LLM.OpenAIModel, overlay.LLM.OpenAIModel)
	mergeString(&c.LLM.OpenAIBaseURL, overlay.LLM.OpenAIBaseURL)
	mergeString(&c.LLM.AnthropicAPIKey, overlay.LLM.AnthropicAPIKey)
	mergeString(&c.LLM.AnthropicModel, overlay.LLM.AnthropicModel)
	if overlay.LLM.TimeoutSeconds > 0 {
		c.LLM.TimeoutSeconds = overlay.LLM.TimeoutSeconds
	}

	if overlay.Engine.CompletionsPerSecond > 0 {
		c.Engine.CompletionsPerSecond = overlay.Engine.CompletionsPerSecond
	}
	if overlay.Engine.CompletionBurst > 0 {
		c.Engine.CompletionBurst = overlay.Engine.CompletionBurst
	}

	mergeString(&c.Notify.EventsPath, overlay.Notify.EventsPath)
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// buildBaseConfig constructs a Config with values from environment
// variables and defaults.
func buildBaseConfig() *Config {
	return &Config{
		Storage: Storage{
			Engine:      getEnv("RECALL_STORAGE_ENGINE", "sqlite"),
			SQLitePath:  getEnv("RECALL_SQLITE_PATH", "./data/recall.db"),
			PostgresDSN: getEnv("RECALL_POSTGRES_DSN", ""),
		},
		LLM: LLMConfig{
			Provider:        getEnv("RECALL_LLM_PROVIDER", "ollama"),
			TimeoutSeconds:  getEnvInt("RECALL_LLM_TIMEOUT_SECONDS", 60),
			OllamaURL:       getEnv("RECALL_OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:     getEnv("RECALL_OLLAMA_MODEL", "qwen2.5:7b"),
			OpenAIAPIKey:    getEnv("RECALL_OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("RECALL_OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:   getEnv("RECALL_OPENAI_BASE_URL", ""),
			AnthropicAPIKey: getEnv("RECALL_ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("RECALL_ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
		},
		Engine: Engine{
			CompletionsPerSecond: getEnvFloat("RECALL_COMPLETIONS_PER_SECOND", 2),
			CompletionBurst:      getEnvInt("RECALL_COMPLETION_BURST", 4),
		},
		Notify: Notify{
			EventsPath: getEnv("RECALL_EVENTS_PATH", ""),
		},
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
