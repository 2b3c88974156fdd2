package provider

import (
	"context"
	"sync"

	"github.com/google/generative-ai-go/genai"
)

// MockGeminiClient is a mock implementation of GeminiClient for testing.
type MockGeminiClient struct {
	// Models returned from ListModels.
	Models []*genai.ModelInfo
	// ListErr, when set, is returned from ListModels.
	ListErr error
	// Response text returned from GenerateContent.
	Response string
	// GenerateErr, when set, is returned from GenerateContent.
	GenerateErr error

	mu       sync.Mutex
	requests []*GeminiRequest
}

// NewMockGeminiClient creates a MockGeminiClient exposing the given generate-capable models.
func NewMockGeminiClient(names ...string) *MockGeminiClient {
	m := &MockGeminiClient{Response: "Level 4 - non-urgent."}
	for _, name := range names {
		m.Models = append(m.Models, &genai.ModelInfo{
			Name:                       "models/" + name,
			SupportedGenerationMethods: []string{OpGenerateContent, "countTokens"},
		})
	}
	return m
}

// ListModels implements GeminiClient.ListModels for the mock.
func (m *MockGeminiClient) ListModels(ctx context.Context) ([]*genai.ModelInfo, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Models, nil
}

// GenerateContent implements GeminiClient.GenerateContent for the mock.
func (m *MockGeminiClient) GenerateContent(ctx context.Context, req *GeminiRequest) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateErr != nil {
		return nil, m.GenerateErr
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(m.Response)},
			},
		}},
	}, nil
}

// Requests returns the requests received so far.
func (m *MockGeminiClient) Requests() []*GeminiRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*GeminiRequest(nil), m.requests...)
}
