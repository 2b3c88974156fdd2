package triage

import "errors"

// Triage errors. Callers map them to user-facing outcomes with errors.Is.
var (
	// ErrConfiguration is returned when no usable model or credentials exist.
	ErrConfiguration = errors.New("triage is not configured")

	// ErrValidation is returned for bad input. No inference call is made.
	ErrValidation = errors.New("invalid triage request")

	// ErrInference is returned when the model call fails or times out.
	ErrInference = errors.New("inference failed")
)
