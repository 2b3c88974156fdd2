package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ollama "github.com/ollama/ollama/api"
	"github.com/ollama/ollama/types/model"
)

// MockOllamaClient is a mock implementation of OllamaClient for testing.
type MockOllamaClient struct {
	// Map of prompt snippets to mock replies
	MockResponses map[string]string
	// Default reply if no match is found
	DefaultResponse string
	// Available models to return from List()
	AvailableModels []string
	// Capabilities returned from Show(), keyed by model name.
	// Models without an entry report completion only.
	Capabilities map[string][]model.Capability
	// ListErr, when set, is returned from List().
	ListErr error

	mu          sync.Mutex
	lastRequest *ollama.ChatRequest
}

// NewMockOllamaClient creates a new MockOllamaClient with default responses.
func NewMockOllamaClient() *MockOllamaClient {
	return &MockOllamaClient{
		MockResponses:   make(map[string]string),
		DefaultResponse: "Level 4 - non-urgent. Rest and hydrate.",
		AvailableModels: []string{"llama3.2:latest"},
		Capabilities:    make(map[string][]model.Capability),
	}
}

// Chat implements OllamaClient.Chat for the mock.
func (m *MockOllamaClient) Chat(ctx context.Context, req *ollama.ChatRequest, fn func(ollama.ChatResponse) error) error {
	m.mu.Lock()
	m.lastRequest = req
	m.mu.Unlock()

	var content string
	if len(req.Messages) > 0 {
		content = req.Messages[0].Content
	}

	reply := m.DefaultResponse
	for key, response := range m.MockResponses {
		if strings.Contains(content, key) {
			reply = response
			break
		}
	}

	return fn(ollama.ChatResponse{
		Message: ollama.Message{
			Role:    "assistant",
			Content: reply,
		},
		Done: true,
	})
}

// List implements OllamaClient.List for the mock.
func (m *MockOllamaClient) List(ctx context.Context) (*ollama.ListResponse, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	models := make([]ollama.ListModelResponse, len(m.AvailableModels))
	for i, modelName := range m.AvailableModels {
		models[i] = ollama.ListModelResponse{
			Name:  modelName,
			Model: modelName,
		}
	}
	return &ollama.ListResponse{
		Models: models,
	}, nil
}

// Show implements OllamaClient.Show for the mock.
func (m *MockOllamaClient) Show(ctx context.Context, req *ollama.ShowRequest) (*ollama.ShowResponse, error) {
	for _, name := range m.AvailableModels {
		if name != req.Model {
			continue
		}
		caps, ok := m.Capabilities[name]
		if !ok {
			caps = []model.Capability{model.CapabilityCompletion}
		}
		return &ollama.ShowResponse{Capabilities: caps}, nil
	}
	return nil, fmt.Errorf("model %q not found", req.Model)
}

// LastRequest returns the most recent chat request.
func (m *MockOllamaClient) LastRequest() *ollama.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}
