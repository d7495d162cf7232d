package embedding

import (
	"context"
	"fmt"
)

// dimensionProbe is the text embedded once at startup to learn the
// backend model's vector dimension.
const dimensionProbe = "dimension probe"

// Provider is a Generator with a known, fixed vector dimension.
// The dimension is determined once at construction by embedding a probe
// string; every vector produced afterwards shares it for the provider's
// lifetime.
type Provider struct {
	gen       Generator
	dimension int
}

// NewProvider wraps gen and probes its vector dimension. Construction
// fails with ErrEncoderUnavailable when the backend cannot be reached —
// the matching subsystem is unusable without an encoder, so callers
// treat this as fatal at startup.
func NewProvider(ctx context.Context, gen Generator) (*Provider, error) {
	vec, err := gen.Embed(ctx, dimensionProbe)
	if err != nil {
		return nil, fmt.Errorf("%w: dimension probe failed for model %s: %v",
			ErrEncoderUnavailable, gen.GetModel(), err)
	}
	return &Provider{gen: gen, dimension: len(vec)}, nil
}

// Embed returns the embedding vector for one text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.gen.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}
	return vec, nil
}

// EmbedBatch returns one vector per input text, order-preserving.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.gen.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}
	return vectors, nil
}

// GetModel returns the backend model name.
func (p *Provider) GetModel() string {
	return p.gen.GetModel()
}

// Dimension returns the provider's fixed vector dimension.
func (p *Provider) Dimension() int {
	return p.dimension
}

// Compile-time assertion.
var _ Generator = (*Provider)(nil)
