package service

import "errors"

// Error definitions for the service package.
var (
	// ErrInference wraps failures raised by the inference capability
	// during a request. Inference is never retried.
	ErrInference = errors.New("inference failed")

	// ErrEmptyText is returned when a synthesis request has no text.
	ErrEmptyText = errors.New("text to synthesize is empty")

	// ErrUnknownVoice is returned when no voice is configured for the
	// requested language.
	ErrUnknownVoice = errors.New("no voice configured for language")
)
