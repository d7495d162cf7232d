package storage

import "errors"

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// Vector collection names used with VectorSearcher implementations.
const (
	// CollectionProfiles holds profile embeddings.
	CollectionProfiles = "profiles"

	// CollectionProjects holds project embeddings.
	CollectionProjects = "projects"
)
