package model

import "errors"

// Error definitions for the model package.
var (
	// ErrNotFound is returned when a selector matches no registered model.
	ErrNotFound = errors.New("model not found in registry")

	// ErrNotLoaded is returned when a model is registered but its
	// instance has not been loaded into the cache yet.
	ErrNotLoaded = errors.New("model not loaded yet")

	// ErrDefaultMissing is returned when the mandatory default model
	// artifact does not exist on disk.
	ErrDefaultMissing = errors.New("default model artifact is missing")
)
