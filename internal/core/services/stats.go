package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// StatsService reports counts from the metadata store and the live index.
type StatsService struct {
	indexes  driven.IndexStore
	metadata driven.MetadataStore
	guard    *IndexGuard
}

// NewStatsService creates a stats service.
func NewStatsService(indexes driven.IndexStore, metadata driven.MetadataStore, guard *IndexGuard) *StatsService {
	if guard == nil {
		guard = NewIndexGuard()
	}
	return &StatsService{indexes: indexes, metadata: metadata, guard: guard}
}

// Stats returns document, chunk and vector counts for the active build.
func (s *StatsService) Stats(ctx context.Context) (*domain.SystemStats, error) {
	s.guard.rw.RLock()
	defer s.guard.rw.RUnlock()

	meta, err := s.metadata.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("metadata stats: %w", err)
	}

	stats := &domain.SystemStats{
		Documents: meta.Documents,
		Chunks:    meta.Chunks,
		Vectors:   meta.Vectors,
		BuildID:   meta.BuildID,
	}
	if idx := s.indexes.Current(); idx != nil {
		stats.IndexedVectors = idx.Len()
		stats.Dimension = idx.Dimension()
	}
	return stats, nil
}
