package provider

import (
	"context"
	"fmt"
	"strings"
)

// Settings selects and configures a provider.
type Settings struct {
	Kind          string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	// Structured asks the model for a JSON assessment instead of free text.
	Structured bool
}

// New builds the provider named by s.Kind.
func New(ctx context.Context, s Settings) (LLMProvider, error) {
	switch strings.ToLower(s.Kind) {
	case "gemini", "":
		p, err := NewGeminiProvider(ctx, s.GeminiAPIKey, s.Structured)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "ollama":
		p, err := NewOllamaProvider(s.Structured)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		p, err := NewOpenAIProvider(s.OpenAIAPIKey, s.OpenAIBaseURL, s.Structured)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, s.Kind)
	}
}
