package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/sebrandon1/pulsepoint/internal/assessment"
)

// OpenAIProvider implements LLMProvider using the OpenAI-compatible chat completions API.
// Works with OpenAI, Azure OpenAI, vLLM, llama.cpp server, and other compatible endpoints.
type OpenAIProvider struct {
	client     *openai.Client
	structured bool
}

// NewOpenAIProvider creates a new OpenAIProvider. baseURL defaults to
// https://api.openai.com; a trailing /v1 is added when missing. The key may be
// empty only for a custom baseURL.
func NewOpenAIProvider(apiKey, baseURL string, structured bool) (*OpenAIProvider, error) {
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		base := strings.TrimSuffix(baseURL, "/")
		if !strings.HasSuffix(base, "/v1") {
			base += "/v1"
		}
		cfg.BaseURL = base
	}
	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(cfg),
		structured: structured,
	}, nil
}

// ListModels implements LLMProvider.ListModels. The models endpoint carries no
// capabilities, so chat-capable families are recognised by identifier.
func (o *OpenAIProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	list, err := o.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai list models: %w", err)
	}
	models := make([]ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		info := ModelInfo{ID: m.ID}
		if chatCapable(m.ID) {
			info.Operations = []string{OpGenerateContent}
		}
		models = append(models, info)
	}
	return models, nil
}

var nonChatMarkers = []string{
	"embedding", "whisper", "tts", "dall-e", "moderation", "audio",
	"realtime", "transcribe", "image", "search", "instruct",
}

func chatCapable(id string) bool {
	id = strings.ToLower(id)
	for _, marker := range nonChatMarkers {
		if strings.Contains(id, marker) {
			return false
		}
	}
	for _, prefix := range []string{"gpt-", "chatgpt-", "o1", "o3", "o4"} {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// Model implements LLMProvider.Model.
func (o *OpenAIProvider) Model(id string) (Model, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyModel
	}
	return &openAIModel{provider: o, name: id}, nil
}

// Name implements LLMProvider.Name.
func (o *OpenAIProvider) Name() string {
	return "openai"
}

type openAIModel struct {
	provider *OpenAIProvider
	name     string
}

func (m *openAIModel) Name() string { return m.name }

func (m *openAIModel) Accepts(kind PartKind) bool {
	return kind == PartText || kind == PartImage
}

func (m *openAIModel) Generate(ctx context.Context, parts []Part) (string, error) {
	content := make([]openai.ChatMessagePart, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case PartText:
			content = append(content, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		case PartImage:
			dataURL := fmt.Sprintf("data:%s;base64,%s", p.MIMEType, base64.StdEncoding.EncodeToString(p.Data))
			content = append(content, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}

	req := openai.ChatCompletionRequest{
		Model: m.name,
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: content,
		}},
		Temperature: 0.3,
	}
	if m.provider.structured {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "triage_assessment",
				Schema: assessment.JSONSchema(),
			},
		}
	}

	resp, err := m.provider.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
