package llm

import (
	"fmt"

	"github.com/kiranshivaraju/chainwatch/internal/config"
	"github.com/kiranshivaraju/chainwatch/internal/llm/anthropic"
	"github.com/kiranshivaraju/chainwatch/internal/llm/ollama"
	"github.com/kiranshivaraju/chainwatch/internal/llm/openai"
)

// NewClient constructs the configured LLM client. Called once at server
// startup. Provider "none" returns (nil, nil): the agent then runs on the
// deterministic rule engine alone, which is a fully supported mode.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "none", "":
		return nil, nil
	case "ollama":
		return ollama.NewClient(cfg.Ollama, cfg.InferenceTimeout), nil
	case "openai":
		return openai.NewClient(cfg.OpenAI), nil
	case "anthropic":
		return anthropic.NewClient(cfg.Anthropic, cfg.InferenceTimeout), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q: must be one of none, ollama, openai, anthropic", cfg.Provider)
	}
}
