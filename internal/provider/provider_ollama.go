package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	ollama "github.com/ollama/ollama/api"
	"github.com/ollama/ollama/types/model"

	"github.com/sebrandon1/pulsepoint/internal/assessment"
)

// OpVision marks Ollama models that accept image input.
const OpVision = "vision"

// OllamaProvider implements LLMProvider using the Ollama API.
type OllamaProvider struct {
	client     OllamaClient
	structured bool

	mu     sync.RWMutex
	vision map[string]bool
}

// NewOllamaProvider creates a new OllamaProvider from the environment.
func NewOllamaProvider(structured bool) (*OllamaProvider, error) {
	client, err := NewRealOllamaClient()
	if err != nil {
		return nil, err
	}
	return NewOllamaProviderFromClient(client, structured), nil
}

// NewOllamaProviderFromClient creates an OllamaProvider from an existing OllamaClient.
// Used for testing with MockOllamaClient.
func NewOllamaProviderFromClient(client OllamaClient, structured bool) *OllamaProvider {
	return &OllamaProvider{
		client:     client,
		structured: structured,
		vision:     make(map[string]bool),
	}
}

// ListModels implements LLMProvider.ListModels. Ollama's listing carries no
// capabilities, so each model is inspected with Show; models that cannot be
// inspected are skipped.
func (o *OllamaProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	response, err := o.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ollama list models: %w", err)
	}

	models := make([]ModelInfo, 0, len(response.Models))
	for _, m := range response.Models {
		show, err := o.client.Show(ctx, &ollama.ShowRequest{Model: m.Name})
		if err != nil {
			continue
		}
		info := ModelInfo{ID: m.Name}
		for _, c := range show.Capabilities {
			switch c {
			case model.CapabilityCompletion:
				info.Operations = append(info.Operations, OpGenerateContent)
			case model.CapabilityVision:
				info.Operations = append(info.Operations, OpVision)
			}
		}
		o.mu.Lock()
		o.vision[m.Name] = info.Supports(OpVision)
		o.mu.Unlock()
		models = append(models, info)
	}
	return models, nil
}

// Model implements LLMProvider.Model.
func (o *OllamaProvider) Model(id string) (Model, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyModel
	}
	return &ollamaModel{provider: o, name: id}, nil
}

// Name implements LLMProvider.Name.
func (o *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaModel struct {
	provider *OllamaProvider
	name     string
}

func (m *ollamaModel) Name() string { return m.name }

// Accepts reports image support from the last discovery; models never
// inspected are assumed to take images. Audio is not part of the chat API.
func (m *ollamaModel) Accepts(kind PartKind) bool {
	switch kind {
	case PartText:
		return true
	case PartImage:
		m.provider.mu.RLock()
		defer m.provider.mu.RUnlock()
		vision, known := m.provider.vision[m.name]
		return !known || vision
	default:
		return false
	}
}

func (m *ollamaModel) Generate(ctx context.Context, parts []Part) (string, error) {
	var (
		texts  []string
		images []ollama.ImageData
	)
	for _, p := range parts {
		switch p.Kind {
		case PartText:
			texts = append(texts, p.Text)
		case PartImage:
			images = append(images, ollama.ImageData(p.Data))
		}
	}

	falseVar := false
	chatReq := &ollama.ChatRequest{
		Model: m.name,
		Messages: []ollama.Message{
			{
				Role:    "user",
				Content: strings.Join(texts, "\n\n"),
				Images:  images,
			},
		},
		Options: map[string]interface{}{
			"seed": 42,
		},
		Stream: &falseVar,
	}
	if m.provider.structured {
		schema, err := json.Marshal(assessment.JSONSchema())
		if err != nil {
			return "", fmt.Errorf("ollama schema: %w", err)
		}
		chatReq.Format = schema
	}

	var reply strings.Builder
	err := m.provider.client.Chat(ctx, chatReq, func(resp ollama.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if reply.Len() == 0 {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return reply.String(), nil
}
