package embedding

import (
	"fmt"
	"time"
)

// Config selects and configures an embedding backend.
type Config struct {
	// Provider is the backend name: "ollama" or "openai".
	// Empty defaults to "ollama".
	Provider string

	// BaseURL overrides the backend's default API URL.
	BaseURL string

	// Model is the embedding model name; empty uses the backend default.
	Model string

	// APIKey authenticates against hosted backends (OpenAI).
	APIKey string

	// Timeout is the per-request timeout; zero uses the backend default.
	Timeout time.Duration
}

// NewGenerator creates the appropriate Generator for the configured
// backend.
func NewGenerator(cfg Config) (Generator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	case "ollama", "":
		return NewOllamaClient(OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", cfg.Provider)
	}
}
