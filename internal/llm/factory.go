package llm

import (
	"fmt"
	"strings"
)

// NewClient creates an inference client based on configuration.
// An empty provider disables inference and returns a nil client.
func NewClient(config Config) (Client, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "ollama":
		return NewOllamaClient(config), nil

	case "openai", "openai-compatible":
		return NewOpenAIClient(config)

	case "", "none":
		// No provider configured - return nil (inference disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown inference provider: %s (supported: ollama, openai)", config.Provider)
	}
}
