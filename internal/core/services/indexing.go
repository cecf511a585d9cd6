package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// metadataBatchSize is the default number of rows written per InsertBatch call.
const metadataBatchSize = 500

// Ensure IndexingService implements the interface.
var _ driving.IndexingService = (*IndexingService)(nil)

// IndexingService rebuilds the vector index and metadata from scratch.
type IndexingService struct {
	loader    driven.DocumentLoader
	chunker   driven.PostProcessorPipeline
	embedding driven.EmbeddingService
	indexes   driven.IndexStore
	metadata  driven.MetadataStore
	guard     *IndexGuard
	batchSize int
}

// NewIndexingService creates an indexing service.
// Pass the guard shared with the query services.
func NewIndexingService(
	loader driven.DocumentLoader,
	chunker driven.PostProcessorPipeline,
	embedding driven.EmbeddingService,
	indexes driven.IndexStore,
	metadata driven.MetadataStore,
	guard *IndexGuard,
) *IndexingService {
	if guard == nil {
		guard = NewIndexGuard()
	}
	return &IndexingService{
		loader:    loader,
		chunker:   chunker,
		embedding: embedding,
		indexes:   indexes,
		metadata:  metadata,
		guard:     guard,
		batchSize: metadataBatchSize,
	}
}

// Build runs a full rebuild. A concurrent Build waits for the running one.
func (s *IndexingService) Build(ctx context.Context) (*domain.BuildReport, error) {
	s.guard.build.Lock()
	defer s.guard.build.Unlock()
	return s.build(ctx)
}

// TryBuild runs a full rebuild unless one is already running.
func (s *IndexingService) TryBuild(ctx context.Context) (*domain.BuildReport, error) {
	if !s.guard.build.TryLock() {
		return nil, domain.ErrBuildInProgress
	}
	defer s.guard.build.Unlock()
	return s.build(ctx)
}

func (s *IndexingService) build(ctx context.Context) (*domain.BuildReport, error) {
	logger.Section("Index Build")
	start := time.Now()
	report := &domain.BuildReport{}

	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	step := time.Now()
	docs, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	report.Documents = len(docs)
	logger.Info("Loaded %d documents", len(docs))
	logger.Timing("load", step)

	step = time.Now()
	chunks, err := s.chunker.ChunkDocuments(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("chunk documents: %w", err)
	}
	report.Chunks = len(chunks)
	if len(chunks) == 0 {
		return report, fmt.Errorf("%w: no chunks produced from %d documents", domain.ErrInvalidInput, len(docs))
	}
	logger.Info("Created %d chunks", len(chunks))
	logger.Timing("chunk", step)

	step = time.Now()
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("embed chunks: %w", err)
	}
	dim, err := checkVectors(vectors, len(chunks), s.embedding.Dimensions())
	if err != nil {
		return report, err
	}
	report.Dimension = dim
	logger.Info("Embedded %d chunks (dim=%d, model=%s)", len(vectors), dim, s.embedding.ModelName())
	logger.Timing("embed", step)

	ids := make([]int64, len(chunks))
	for i := range ids {
		ids[i] = int64(i)
	}

	staged := s.indexes.Stage()
	published := false
	defer func() {
		if !published {
			_ = staged.Close()
		}
	}()

	if err := staged.Add(ctx, ids, vectors); err != nil {
		return report, fmt.Errorf("add vectors: %w", err)
	}
	report.Vectors = staged.Len()

	step = time.Now()
	buildID, err := s.metadata.BeginBuild(ctx)
	if err != nil {
		return report, fmt.Errorf("begin metadata build: %w", err)
	}
	report.BuildID = buildID

	rows := make([]domain.MetadataRow, len(chunks))
	for i, c := range chunks {
		rows[i] = domain.MetadataRow{
			ChunkID:      c.ChunkID,
			VectorID:     ids[i],
			DocumentName: c.DocID,
			ChunkText:    c.Text,
		}
	}
	for from := 0; from < len(rows); from += s.batchSize {
		batch := rows[from:min(from+s.batchSize, len(rows))]
		if err := s.metadata.InsertBatch(ctx, buildID, batch); err != nil {
			s.discard(buildID)
			return report, fmt.Errorf("%w: metadata stopped at %d of %d rows: %w",
				domain.ErrPartialBuild, report.MetadataInserted, len(chunks), err)
		}
		report.MetadataInserted += len(batch)
	}
	logger.Timing("metadata", step)

	published, err = s.commit(ctx, staged, buildID, report)
	if err != nil {
		return report, err
	}

	report.Duration = time.Since(start)
	logger.Info("Build %s complete: %d vectors in %.1fms", buildID, report.Vectors, logger.Millis(report.Duration))
	return report, nil
}

// commit publishes the index and activates the metadata under the write lock.
// published reports whether staged became the live index, even when activation fails.
func (s *IndexingService) commit(
	ctx context.Context, staged driven.VectorIndex, buildID string, report *domain.BuildReport,
) (published bool, err error) {
	s.guard.rw.Lock()
	defer s.guard.rw.Unlock()

	if err := s.indexes.Publish(staged); err != nil {
		s.discard(buildID)
		return false, fmt.Errorf("publish index: %w", err)
	}

	if err := s.metadata.Activate(ctx, buildID); err != nil {
		report.Partial = true
		return true, fmt.Errorf("%w: index published but metadata build %s not activated: %w",
			domain.ErrPartialBuild, buildID, err)
	}
	return true, nil
}

// discard drops an unfinished metadata build; a failure only leaves garbage.
func (s *IndexingService) discard(buildID string) {
	if err := s.metadata.Discard(context.Background(), buildID); err != nil {
		logger.Warn("discard metadata build %s: %v", buildID, err)
	}
}

// checkVectors enforces one vector per chunk with a single shared dimension.
func checkVectors(vectors [][]float32, want, expectedDim int) (int, error) {
	if len(vectors) != want {
		return 0, fmt.Errorf("embedding returned %d vectors for %d chunks", len(vectors), want)
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: empty embedding vector", domain.ErrDimensionMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("%w: vector %d has %d dimensions, want %d", domain.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	if expectedDim > 0 && dim != expectedDim {
		return 0, fmt.Errorf("%w: model returned %d dimensions, configured %d", domain.ErrDimensionMismatch, dim, expectedDim)
	}
	return dim, nil
}

// Verify compares the live index's ID set with the active metadata build.
func (s *IndexingService) Verify(ctx context.Context) (*domain.ConsistencyReport, error) {
	s.guard.rw.RLock()
	defer s.guard.rw.RUnlock()

	var indexIDs []int64
	if idx := s.indexes.Current(); idx != nil {
		indexIDs = idx.IDs()
	}

	metaIDs, err := s.metadata.VectorIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list metadata ids: %w", err)
	}

	report := &domain.ConsistencyReport{
		IndexCount:      len(indexIDs),
		MetadataCount:   len(metaIDs),
		MissingMetadata: difference(indexIDs, metaIDs),
		MissingVectors:  difference(metaIDs, indexIDs),
	}
	if !report.Consistent() {
		logger.Warn("index and metadata disagree: %d ids without metadata, %d without vectors",
			len(report.MissingMetadata), len(report.MissingVectors))
	}
	return report, nil
}

// difference returns the sorted IDs of a that are not in b.
func difference(a, b []int64) []int64 {
	in := make(map[int64]struct{}, len(b))
	for _, id := range b {
		in[id] = struct{}{}
	}
	out := []int64{}
	for _, id := range a {
		if _, ok := in[id]; !ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
