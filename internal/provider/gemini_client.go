package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiRequest is a single generateContent call.
type GeminiRequest struct {
	Model      string
	Structured bool
	Parts      []genai.Part
}

// GeminiClient defines the interface for interacting with Gemini.
// This allows us to mock the client for testing purposes.
type GeminiClient interface {
	ListModels(ctx context.Context) ([]*genai.ModelInfo, error)
	GenerateContent(ctx context.Context, req *GeminiRequest) (*genai.GenerateContentResponse, error)
}

// RealGeminiClient is a wrapper around the genai client that implements GeminiClient.
type RealGeminiClient struct {
	client *genai.Client
}

// NewRealGeminiClient creates a RealGeminiClient authenticated with apiKey.
func NewRealGeminiClient(ctx context.Context, apiKey string) (*RealGeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &RealGeminiClient{client: client}, nil
}

// ListModels drains the model iterator.
func (r *RealGeminiClient) ListModels(ctx context.Context) ([]*genai.ModelInfo, error) {
	var models []*genai.ModelInfo
	it := r.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return models, nil
		}
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
}

// GenerateContent implements GeminiClient.GenerateContent.
func (r *RealGeminiClient) GenerateContent(ctx context.Context, req *GeminiRequest) (*genai.GenerateContentResponse, error) {
	model := r.client.GenerativeModel(req.Model)
	if req.Structured {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = geminiAssessmentSchema()
	}
	return model.GenerateContent(ctx, req.Parts...)
}

// Close releases the underlying gRPC connection.
func (r *RealGeminiClient) Close() error {
	return r.client.Close()
}

func geminiAssessmentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"level": {
				Type:        genai.TypeInteger,
				Description: "Urgency level where 1 is immediate resuscitation and 5 is non-urgent",
			},
			"reasoning": {Type: genai.TypeString},
			"next_step": {Type: genai.TypeString},
		},
		Required: []string{"level", "reasoning", "next_step"},
	}
}
