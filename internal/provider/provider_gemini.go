package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// GeminiProvider implements LLMProvider using the Google Generative Language API.
type GeminiProvider struct {
	client     GeminiClient
	structured bool
}

// NewGeminiProvider creates a GeminiProvider authenticated with apiKey.
func NewGeminiProvider(ctx context.Context, apiKey string, structured bool) (*GeminiProvider, error) {
	client, err := NewRealGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{client: client, structured: structured}, nil
}

// NewGeminiProviderFromClient creates a GeminiProvider from an existing GeminiClient.
// Used for testing with MockGeminiClient.
func NewGeminiProviderFromClient(client GeminiClient, structured bool) *GeminiProvider {
	return &GeminiProvider{client: client, structured: structured}
}

// ListModels implements LLMProvider.ListModels. Identifiers are returned
// without the "models/" resource prefix.
func (g *GeminiProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	infos, err := g.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("gemini list models: %w", err)
	}
	models := make([]ModelInfo, 0, len(infos))
	for _, info := range infos {
		models = append(models, ModelInfo{
			ID:         strings.TrimPrefix(info.Name, "models/"),
			Operations: info.SupportedGenerationMethods,
		})
	}
	return models, nil
}

// Model implements LLMProvider.Model.
func (g *GeminiProvider) Model(id string) (Model, error) {
	id = strings.TrimPrefix(strings.TrimSpace(id), "models/")
	if id == "" {
		return nil, ErrEmptyModel
	}
	return &geminiModel{provider: g, name: id}, nil
}

// Name implements LLMProvider.Name.
func (g *GeminiProvider) Name() string {
	return "gemini"
}

// Close releases the client when it holds a connection.
func (g *GeminiProvider) Close() error {
	if c, ok := g.client.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

type geminiModel struct {
	provider *GeminiProvider
	name     string
}

func (m *geminiModel) Name() string { return m.name }

// Gemini models take text, image and audio inline data.
func (m *geminiModel) Accepts(kind PartKind) bool { return true }

func (m *geminiModel) Generate(ctx context.Context, parts []Part) (string, error) {
	req := &GeminiRequest{
		Model:      m.name,
		Structured: m.provider.structured,
		Parts:      make([]genai.Part, 0, len(parts)),
	}
	for _, p := range parts {
		switch p.Kind {
		case PartText:
			req.Parts = append(req.Parts, genai.Text(p.Text))
		default:
			req.Parts = append(req.Parts, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
		}
	}

	resp, err := m.provider.client.GenerateContent(ctx, req)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return text.String(), nil
}
