package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator returns fixed-dimension vectors, or a fixed error.
type stubGenerator struct {
	dim int
	err error
}

func (s *stubGenerator) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return make([]float32, s.dim), nil
}

func (s *stubGenerator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.dim)
	}
	return out, nil
}

func (s *stubGenerator) GetModel() string { return "stub" }

func TestNewProviderProbesDimension(t *testing.T) {
	p, err := NewProvider(context.Background(), &stubGenerator{dim: 384})
	require.NoError(t, err)
	assert.Equal(t, 384, p.Dimension())
	assert.Equal(t, "stub", p.GetModel())
}

func TestNewProviderFailsWhenEncoderDown(t *testing.T) {
	_, err := NewProvider(context.Background(), &stubGenerator{err: errors.New("connection refused")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncoderUnavailable)
}

func TestProviderWrapsMidCallFailures(t *testing.T) {
	gen := &stubGenerator{dim: 4}
	p, err := NewProvider(context.Background(), gen)
	require.NoError(t, err)

	gen.err = errors.New("timeout")

	_, err = p.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrEncoderUnavailable)

	_, err = p.EmbedBatch(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, ErrEncoderUnavailable)
}
