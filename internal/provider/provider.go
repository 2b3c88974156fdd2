package provider

import (
	"context"
	"slices"
)

// OpGenerateContent is the operation a model must advertise to be usable for triage.
const OpGenerateContent = "generateContent"

// PartKind identifies the payload type of a Part.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
	PartAudio PartKind = "audio"
)

// Part is one element of an ordered multi-part generation request.
type Part struct {
	Kind     PartKind
	Text     string
	MIMEType string
	Data     []byte
}

// Text returns a text part.
func Text(s string) Part {
	return Part{Kind: PartText, Text: s}
}

// Image returns an image part.
func Image(mimeType string, data []byte) Part {
	return Part{Kind: PartImage, MIMEType: mimeType, Data: data}
}

// Audio returns an audio part.
func Audio(mimeType string, data []byte) Part {
	return Part{Kind: PartAudio, MIMEType: mimeType, Data: data}
}

// ModelInfo is one entry of a provider's model listing.
type ModelInfo struct {
	ID         string
	Operations []string
}

// Supports reports whether the model advertises op.
func (m ModelInfo) Supports(op string) bool {
	return slices.Contains(m.Operations, op)
}

// Model is a resolved, ready-to-call inference model.
type Model interface {
	// Name returns the provider's identifier for the model.
	Name() string
	// Accepts reports whether parts of the given kind can be sent to the model.
	Accepts(kind PartKind) bool
	// Generate sends the ordered parts and returns the model's text reply.
	Generate(ctx context.Context, parts []Part) (string, error)
}

// LLMProvider defines a provider-agnostic interface for model discovery and
// model construction. Implementations include Gemini (default), Ollama and
// OpenAI-compatible APIs.
type LLMProvider interface {
	// ListModels returns every model the credentials can see, annotated with
	// its supported operations.
	ListModels(ctx context.Context) ([]ModelInfo, error)
	// Model builds a handle for the given identifier.
	Model(id string) (Model, error)
	// Name returns the provider name for display purposes.
	Name() string
}
