package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// mockEmbedding returns fixed vectors.
type mockEmbedding struct {
	vec []float32
	err error
}

func (m *mockEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]float32(nil), m.vec...), nil
}

func (m *mockEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int              { return len(m.vec) }
func (m *mockEmbedding) ModelName() string            { return "mock" }
func (m *mockEmbedding) Ping(_ context.Context) error { return nil }
func (m *mockEmbedding) Close() error                 { return nil }

var _ driven.EmbeddingService = (*mockEmbedding)(nil)

func TestNormalized_Embed(t *testing.T) {
	svc := Normalized(&mockEmbedding{vec: []float32{3, 4}})

	vec, err := svc.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)

	assert.Equal(t, 2, svc.Dimensions())
	assert.Equal(t, "mock", svc.ModelName())
}

func TestNormalized_EmbedBatch(t *testing.T) {
	svc := Normalized(&mockEmbedding{vec: []float32{0, 2}})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	for _, v := range vecs {
		assert.Equal(t, []float32{0, 1}, v)
	}
}

func TestNormalized_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := Normalized(&mockEmbedding{err: boom})

	_, err := svc.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	_, err = svc.EmbedBatch(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, boom)
}

func TestNormalized_Idempotent(t *testing.T) {
	inner := Normalized(&mockEmbedding{vec: []float32{1}})
	assert.Same(t, inner, Normalized(inner))
}

func TestNormalize_ZeroVector(t *testing.T) {
	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
}
