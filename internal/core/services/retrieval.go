package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService embeds a query, searches the live index and joins the
// hits with their metadata rows.
type RetrievalService struct {
	embedding driven.EmbeddingService
	indexes   driven.IndexStore
	metadata  driven.MetadataStore
	guard     *IndexGuard
}

// NewRetrievalService creates a retrieval service.
// A nil guard gets a private one, which is only safe without concurrent builds.
func NewRetrievalService(
	embedding driven.EmbeddingService,
	indexes driven.IndexStore,
	metadata driven.MetadataStore,
	guard *IndexGuard,
) *RetrievalService {
	if guard == nil {
		guard = NewIndexGuard()
	}
	return &RetrievalService{
		embedding: embedding,
		indexes:   indexes,
		metadata:  metadata,
		guard:     guard,
	}
}

// Retrieve returns at most topK rows sorted by descending similarity.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	logger.Section("Retrieval")
	defer logger.Timing("retrieval", time.Now())

	if strings.TrimSpace(query) == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievalResult{}, nil
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	start := time.Now()
	vector, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedded in %.1fms (dim=%d)", logger.Millis(time.Since(start)), len(vector))

	s.guard.rw.RLock()
	defer s.guard.rw.RUnlock()

	idx := s.indexes.Current()
	if idx == nil {
		return nil, domain.ErrIndexNotLoaded
	}

	hits, err := idx.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	scores := make(map[int64]float32, len(hits))
	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		if h.ID < 0 {
			continue
		}
		if _, seen := scores[h.ID]; seen {
			continue
		}
		scores[h.ID] = h.Score
		ids = append(ids, h.ID)
	}
	logger.Debug("Index returned %d hits, %d usable", len(hits), len(ids))

	if len(ids) == 0 {
		return []domain.RetrievalResult{}, nil
	}

	rows, err := s.metadata.FetchByVectorIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	if len(rows) < len(ids) {
		logger.Debug("%d hits have no metadata row", len(ids)-len(rows))
	}

	return rankResults(rows, scores, topK), nil
}

// rankResults attaches scores, orders by descending score and caps at topK.
// Rows without a score sort last, ties break on vector ID.
func rankResults(rows []domain.MetadataRow, scores map[int64]float32, topK int) []domain.RetrievalResult {
	results := make([]domain.RetrievalResult, 0, len(rows))
	for _, row := range rows {
		r := domain.RetrievalResult{MetadataRow: row}
		if score, ok := scores[row.VectorID]; ok {
			r.Score = &score
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		switch {
		case a.Scored() && !b.Scored():
			return true
		case !a.Scored() && b.Scored():
			return false
		case a.Scored() && b.Scored() && *a.Score != *b.Score:
			return *a.Score > *b.Score
		default:
			return a.VectorID < b.VectorID
		}
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
