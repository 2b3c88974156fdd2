package provider

import "errors"

var (
	// ErrUnsupportedProvider is returned when the configured provider kind is unknown.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrMissingAPIKey is returned when a hosted provider is built without credentials.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrEmptyModel is returned when a model handle is requested for an empty identifier.
	ErrEmptyModel = errors.New("empty model identifier")

	// ErrEmptyResponse is returned when the provider answers without any text.
	ErrEmptyResponse = errors.New("empty model response")
)
