package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Chainwatch server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Agent    AgentConfig
	LLM      LLMConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// AgentConfig controls the background monitoring cycle.
type AgentConfig struct {
	ScheduleEnabled  bool
	ScheduleInterval time.Duration
	SourceCacheTTL   time.Duration
}

type LLMConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Ollama           OllamaConfig
	OpenAI           OpenAIConfig
	Anthropic        AnthropicConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

var validProviders = map[string]bool{
	"none":      true,
	"ollama":    true,
	"openai":    true,
	"anthropic": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("CHAINWATCH_PORT", 8080),
			Env:  envString("CHAINWATCH_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Agent: AgentConfig{
			ScheduleEnabled:  envBool("AGENT_SCHEDULE_ENABLED", true),
			ScheduleInterval: envDuration("AGENT_SCHEDULE_INTERVAL", 5*time.Minute),
			SourceCacheTTL:   envDuration("AGENT_SOURCE_CACHE_TTL", 2*time.Minute),
		},
		LLM: LLMConfig{
			Provider:         envString("LLM_PROVIDER", "none"),
			InferenceTimeout: envDurationSecs("LLM_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			OpenAI: OpenAIConfig{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  envString("OPENAI_MODEL", "gpt-4o-mini"),
			},
			Anthropic: AnthropicConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				BaseURL: envString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				Model:   envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Agent.ScheduleInterval < time.Minute {
		return fmt.Errorf("AGENT_SCHEDULE_INTERVAL must be at least 1m, got %s", c.Agent.ScheduleInterval)
	}

	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("LLM_PROVIDER must be one of none, ollama, openai, anthropic; got %q", c.LLM.Provider)
	}

	if c.LLM.Provider == "openai" && c.LLM.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER is openai")
	}
	if c.LLM.Provider == "anthropic" && c.LLM.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER is anthropic")
	}
	if c.LLM.Provider == "ollama" && !strings.HasPrefix(c.LLM.Ollama.BaseURL, "http://") && !strings.HasPrefix(c.LLM.Ollama.BaseURL, "https://") {
		return fmt.Errorf("OLLAMA_BASE_URL must start with http:// or https://, got %q", c.LLM.Ollama.BaseURL)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
