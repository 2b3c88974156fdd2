package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/ollama/ollama/types/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiProviderListModelsStripsPrefix(t *testing.T) {
	client := NewMockGeminiClient("gemini-1.5-flash", "gemini-pro")
	client.Models = append(client.Models, &genai.ModelInfo{
		Name:                       "models/text-embedding-004",
		SupportedGenerationMethods: []string{"embedContent"},
	})
	p := NewGeminiProviderFromClient(client, false)

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 3)
	assert.Equal(t, "gemini-1.5-flash", models[0].ID)
	assert.True(t, models[0].Supports(OpGenerateContent))
	assert.Equal(t, "text-embedding-004", models[2].ID)
	assert.False(t, models[2].Supports(OpGenerateContent))
}

func TestGeminiProviderListModelsError(t *testing.T) {
	client := NewMockGeminiClient()
	client.ListErr = errors.New("permission denied")
	p := NewGeminiProviderFromClient(client, false)

	_, err := p.ListModels(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}

func TestGeminiModelGenerateSendsOrderedParts(t *testing.T) {
	client := NewMockGeminiClient("gemini-1.5-flash")
	client.Response = "Level 2 - emergent"
	p := NewGeminiProviderFromClient(client, true)

	m, err := p.Model("models/gemini-1.5-flash")
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-flash", m.Name())
	assert.True(t, m.Accepts(PartAudio))

	reply, err := m.Generate(context.Background(), []Part{
		Text("instruction"),
		Text("Triage for 30yo. Symptoms: chest pain."),
		Image("image/png", []byte{0x89, 0x50}),
		Audio("audio/wav", []byte{0x52, 0x49}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Level 2 - emergent", reply)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Structured)
	require.Len(t, reqs[0].Parts, 4)
	assert.Equal(t, genai.Text("instruction"), reqs[0].Parts[0])
	assert.Equal(t, genai.Blob{MIMEType: "image/png", Data: []byte{0x89, 0x50}}, reqs[0].Parts[2])
	assert.Equal(t, genai.Blob{MIMEType: "audio/wav", Data: []byte{0x52, 0x49}}, reqs[0].Parts[3])
}

func TestGeminiModelGenerateError(t *testing.T) {
	client := NewMockGeminiClient("gemini-1.5-flash")
	client.GenerateErr = errors.New("quota exceeded")
	m, err := NewGeminiProviderFromClient(client, false).Model("gemini-1.5-flash")
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []Part{Text("hi")})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestGeminiSchemaRequiresAllFields(t *testing.T) {
	schema := geminiAssessmentSchema()
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"level", "reasoning", "next_step"}, schema.Required)
}

func TestOllamaProviderListModelsUsesCapabilities(t *testing.T) {
	client := NewMockOllamaClient()
	client.AvailableModels = []string{"llava:latest", "nomic-embed-text:latest", "llama3.2:latest"}
	client.Capabilities = map[string][]model.Capability{
		"llava:latest":            {model.CapabilityCompletion, model.CapabilityVision},
		"nomic-embed-text:latest": {model.Capability("embedding")},
	}
	p := NewOllamaProviderFromClient(client, false)

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 3)
	assert.True(t, models[0].Supports(OpGenerateContent))
	assert.True(t, models[0].Supports(OpVision))
	assert.False(t, models[1].Supports(OpGenerateContent))
	assert.True(t, models[2].Supports(OpGenerateContent))

	llava, err := p.Model("llava:latest")
	require.NoError(t, err)
	assert.True(t, llava.Accepts(PartImage))
	llama, err := p.Model("llama3.2:latest")
	require.NoError(t, err)
	assert.False(t, llama.Accepts(PartImage))
	assert.False(t, llama.Accepts(PartAudio))
}

func TestOllamaModelGenerate(t *testing.T) {
	client := NewMockOllamaClient()
	client.MockResponses["unconscious"] = "Level 1 - resuscitation"
	p := NewOllamaProviderFromClient(client, true)

	m, err := p.Model("llama3.2:latest")
	require.NoError(t, err)
	reply, err := m.Generate(context.Background(), []Part{
		Text("instruction"),
		Text("Symptoms: unconscious"),
		Image("image/jpeg", []byte{0xff, 0xd8}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Level 1 - resuscitation", reply)

	req := client.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "instruction\n\nSymptoms: unconscious", req.Messages[0].Content)
	require.Len(t, req.Messages[0].Images, 1)
	assert.NotEmpty(t, req.Format)
	require.NotNil(t, req.Stream)
	assert.False(t, *req.Stream)
}

func TestOllamaProviderListError(t *testing.T) {
	client := NewMockOllamaClient()
	client.ListErr = errors.New("connection refused")
	_, err := NewOllamaProviderFromClient(client, false).ListModels(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestChatCapable(t *testing.T) {
	testCases := []struct {
		id       string
		expected bool
	}{
		{"gpt-4o-mini", true},
		{"gpt-4.1", true},
		{"o3-mini", true},
		{"text-embedding-3-small", false},
		{"whisper-1", false},
		{"dall-e-3", false},
		{"gpt-4o-audio-preview", false},
		{"gpt-3.5-turbo-instruct", false},
		{"babbage-002", false},
	}
	for _, c := range testCases {
		assert.Equal(t, c.expected, chatCapable(c.id), c.id)
	}
}

func newOpenAITestServer(t *testing.T, reply string, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini","object":"model"},{"id":"text-embedding-3-small","object":"model"}]}`))
		case "/v1/chat/completions":
			if captured != nil {
				assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
			}
			resp := map[string]any{
				"id":     "chatcmpl-1",
				"object": "chat.completion",
				"model":  "gpt-4o-mini",
				"choices": []map[string]any{{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				}},
			}
			assert.NoError(t, json.NewEncoder(w).Encode(resp))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestOpenAIProviderListModels(t *testing.T) {
	server := newOpenAITestServer(t, "", nil)
	defer server.Close()

	p, err := NewOpenAIProvider("sk-test", server.URL, false)
	require.NoError(t, err)

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.True(t, models[0].Supports(OpGenerateContent))
	assert.False(t, models[1].Supports(OpGenerateContent))
}

func TestOpenAIModelGenerate(t *testing.T) {
	var captured map[string]any
	server := newOpenAITestServer(t, "Level 3 - urgent", &captured)
	defer server.Close()

	p, err := NewOpenAIProvider("sk-test", server.URL+"/v1", true)
	require.NoError(t, err)
	m, err := p.Model("gpt-4o-mini")
	require.NoError(t, err)
	assert.False(t, m.Accepts(PartAudio))

	reply, err := m.Generate(context.Background(), []Part{
		Text("instruction"),
		Image("image/png", []byte("png")),
	})
	require.NoError(t, err)
	assert.Equal(t, "Level 3 - urgent", reply)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])

	messages := captured["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	image := content[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,cG5n", image["url"])
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "", false)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	p.MockResponses["chest pain"] = "Level 2"

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Len(t, models, 1)
	assert.Equal(t, 1, p.ListCalls())

	_, err = p.Model(" ")
	assert.ErrorIs(t, err, ErrEmptyModel)

	m, err := p.Model("mock-triage")
	require.NoError(t, err)
	assert.False(t, m.Accepts(PartAudio))

	reply, err := m.Generate(context.Background(), []Part{Text("severe chest pain")})
	require.NoError(t, err)
	assert.Equal(t, "Level 2", reply)
	assert.Equal(t, 1, p.GenerateCalls())
	assert.Len(t, p.LastParts(), 1)
}

func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New(context.Background(), Settings{Kind: "watson"})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	_, err = New(context.Background(), Settings{Kind: "gemini"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	p, err := New(context.Background(), Settings{Kind: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())
}
