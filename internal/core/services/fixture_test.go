package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// fixture wires the real flat index and in-memory metadata store
// behind mock loading and embedding.
type fixture struct {
	loader    *mockLoader
	embedding *mockEmbedding
	indexes   *flat.Store
	metadata  *faultyMetadataStore
	guard     *IndexGuard
	indexing  *IndexingService
	retrieval *RetrievalService
	stats     *StatsService
}

func fruitDocs() []domain.Document {
	return []domain.Document{
		{DocID: "alpha", Text: "alpha apples are red", Source: "/docs/alpha.txt"},
		{DocID: "beta", Text: "beta bananas are yellow", Source: "/docs/beta.txt"},
		{DocID: "gamma", Text: "gamma grapes are purple", Source: "/docs/gamma.md"},
	}
}

func fruitEmbedding() *mockEmbedding {
	return &mockEmbedding{
		vectors: map[string][]float32{
			"alpha":       {1, 0, 0},
			"beta":        {0, 1, 0},
			"gamma":       {0, 0, 1},
			"which fruit": {0.8, 0.6, 0},
		},
		fallback: []float32{0, 0, 1},
		dims:     3,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	indexes, err := flat.NewStore(filepath.Join(t.TempDir(), "index", "vectors.idx"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = indexes.Close() })

	pipeline, err := postprocessors.NewChunkingPipeline(domain.ChunkingSettings{ChunkSize: 500, Overlap: 100})
	require.NoError(t, err)

	f := &fixture{
		loader:    &mockLoader{docs: fruitDocs()},
		embedding: fruitEmbedding(),
		indexes:   indexes,
		metadata:  newFaultyMetadataStore(),
		guard:     NewIndexGuard(),
	}
	f.indexing = NewIndexingService(f.loader, pipeline, f.embedding, f.indexes, f.metadata, f.guard)
	f.retrieval = NewRetrievalService(f.embedding, f.indexes, f.metadata, f.guard)
	f.stats = NewStatsService(f.indexes, f.metadata, f.guard)
	return f
}
