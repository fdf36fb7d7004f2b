// Package llm abstracts the text-generation backend used by the analysis
// engine and the plan generator. The core is agnostic to the provider; any
// failure is treated identically by callers (fall back to deterministic rules).
package llm

import "context"

// Client is the single capability the core consumes. Callers should
// depend on this interface rather than a provider package.
type Client interface {
	// Invoke sends a prompt to the backend and returns the raw response text.
	Invoke(ctx context.Context, prompt string) (string, error)
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}
