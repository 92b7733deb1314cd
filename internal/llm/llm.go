package llm

import (
	"context"
	"errors"
	"fmt"
)

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	ErrMissingAPIKey = errors.New("API key must be set when using the generation API")
	ErrEmptyResponse = errors.New("model returned no text")
)

// Client sends one prompt to a hosted model and returns the generated text.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Factory builds a Client for the given credential.
type Factory func(ctx context.Context, apiKey string) (Client, error)

// NewFactory returns a Factory for provider and model.
func NewFactory(provider, model string) (Factory, error) {
	switch provider {
	case ProviderGemini, "":
		return func(ctx context.Context, apiKey string) (Client, error) {
			return NewGeminiClient(ctx, apiKey, model)
		}, nil
	case ProviderOpenAI:
		return func(_ context.Context, apiKey string) (Client, error) {
			return NewOpenAIClient(apiKey, model)
		}, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: gemini, openai)", provider)
	}
}
