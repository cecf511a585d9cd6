// Package embedding holds decorators shared by every embedding adapter.
package embedding

import (
	"context"
	"math"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure NormalizedService implements the interface.
var _ driven.EmbeddingService = (*NormalizedService)(nil)

// NormalizedService scales every vector of the wrapped service to unit length,
// so the index's inner product equals cosine similarity.
type NormalizedService struct {
	driven.EmbeddingService
}

// Normalized wraps svc. Wrapping an already wrapped service returns it unchanged.
func Normalized(svc driven.EmbeddingService) *NormalizedService {
	if n, ok := svc.(*NormalizedService); ok {
		return n
	}
	return &NormalizedService{EmbeddingService: svc}
}

// Embed returns the unit-norm embedding of text.
func (s *NormalizedService) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.EmbeddingService.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return Normalize(vec), nil
}

// EmbedBatch returns unit-norm embeddings of texts.
func (s *NormalizedService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := s.EmbeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range vecs {
		vecs[i] = Normalize(vecs[i])
	}
	return vecs, nil
}

// Normalize scales v to unit L2 norm in place and returns it.
// The zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}
