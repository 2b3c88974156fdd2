package provider

import (
	"context"
	"strings"
	"sync"
)

// MockProvider is a mock implementation of LLMProvider for testing and demos.
type MockProvider struct {
	// Models returned from ListModels().
	Models []ModelInfo
	// ListErr, when set, is returned from ListModels().
	ListErr error
	// MockResponses maps prompt snippets to mock replies.
	MockResponses map[string]string
	// DefaultResponse is returned when no matching snippet is found.
	DefaultResponse string
	// GenerateErr, when set, is returned from Generate().
	GenerateErr error
	// AcceptAudio controls whether models take audio parts.
	AcceptAudio bool

	mu            sync.Mutex
	listCalls     int
	generateCalls int
	lastParts     []Part
}

// NewMockProvider creates a new MockProvider with default settings.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Models: []ModelInfo{
			{ID: "mock-triage", Operations: []string{OpGenerateContent}},
		},
		MockResponses:   make(map[string]string),
		DefaultResponse: "Urgency: Level 4 (non-urgent).\nReasoning: stable presentation.\nNext step: see a GP.",
	}
}

// ListModels implements LLMProvider.ListModels for the mock.
func (m *MockProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Models, nil
}

// Model implements LLMProvider.Model for the mock.
func (m *MockProvider) Model(id string) (Model, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyModel
	}
	return &mockModel{provider: m, name: id}, nil
}

// Name implements LLMProvider.Name for the mock.
func (m *MockProvider) Name() string {
	return "mock"
}

// ListCalls returns how many times ListModels was called.
func (m *MockProvider) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// GenerateCalls returns how many times any model generated.
func (m *MockProvider) GenerateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls
}

// LastParts returns the parts of the most recent Generate call.
func (m *MockProvider) LastParts() []Part {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastParts
}

type mockModel struct {
	provider *MockProvider
	name     string
}

func (m *mockModel) Name() string { return m.name }

func (m *mockModel) Accepts(kind PartKind) bool {
	return kind != PartAudio || m.provider.AcceptAudio
}

func (m *mockModel) Generate(ctx context.Context, parts []Part) (string, error) {
	p := m.provider
	p.mu.Lock()
	p.generateCalls++
	p.lastParts = parts
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.GenerateErr != nil {
		return "", p.GenerateErr
	}

	var content strings.Builder
	for _, part := range parts {
		if part.Kind == PartText {
			content.WriteString(part.Text)
		}
	}
	for key, response := range p.MockResponses {
		if strings.Contains(content.String(), key) {
			return response, nil
		}
	}
	return p.DefaultResponse, nil
}
