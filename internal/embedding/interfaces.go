// Package embedding provides text-to-vector encoding for the matching
// engine. It wraps remote encoder backends (Ollama, OpenAI) behind one
// Generator interface and protects every HTTP call with a circuit breaker.
package embedding

import (
	"context"
	"errors"
)

// ErrEncoderUnavailable indicates that the backing encoder model could not
// be reached or returned an unusable response. Fatal at startup; during a
// matching call it surfaces to API callers as a generic matching failure.
var ErrEncoderUnavailable = errors.New("embedding encoder unavailable")

// Generator is the interface for generating vector embeddings.
// For a given backend model, Embed is deterministic: the same text always
// yields the same vector, and EmbedBatch is elementwise identical to
// repeated Embed calls in the same order.
type Generator interface {
	// Embed returns the embedding vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, order-preserving.
	// It exists purely as a throughput optimization over repeated Embed
	// calls and must produce identical vectors.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// GetModel returns the backend model name.
	GetModel() string
}
