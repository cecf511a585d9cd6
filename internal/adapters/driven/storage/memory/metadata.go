// Package memory provides an in-memory metadata store for tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// build holds the rows of one build generation.
type build struct {
	rows     map[int64]domain.MetadataRow
	chunkIDs map[string]struct{}
}

// MetadataStore is an in-memory implementation of driven.MetadataStore.
type MetadataStore struct {
	mu     sync.RWMutex
	builds map[string]*build
	active string
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		builds: make(map[string]*build),
	}
}

// BeginBuild starts a new inactive build.
func (s *MetadataStore) BeginBuild(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.builds[id] = &build{
		rows:     make(map[int64]domain.MetadataRow),
		chunkIDs: make(map[string]struct{}),
	}
	return id, nil
}

// InsertBatch stores rows in the given build. Nothing is written on error.
func (s *MetadataStore) InsertBatch(_ context.Context, buildID string, rows []domain.MetadataRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.builds[buildID]
	if !ok {
		return fmt.Errorf("build %s: %w", buildID, domain.ErrNotFound)
	}

	vectors := make(map[int64]struct{}, len(rows))
	chunks := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := b.rows[row.VectorID]; dup {
			return fmt.Errorf("inserting chunk %s: duplicate vector id %d", row.ChunkID, row.VectorID)
		}
		if _, dup := vectors[row.VectorID]; dup {
			return fmt.Errorf("inserting chunk %s: duplicate vector id %d", row.ChunkID, row.VectorID)
		}
		if _, dup := b.chunkIDs[row.ChunkID]; dup {
			return fmt.Errorf("inserting chunk %s: duplicate chunk id", row.ChunkID)
		}
		if _, dup := chunks[row.ChunkID]; dup {
			return fmt.Errorf("inserting chunk %s: duplicate chunk id", row.ChunkID)
		}
		vectors[row.VectorID] = struct{}{}
		chunks[row.ChunkID] = struct{}{}
	}

	for _, row := range rows {
		b.rows[row.VectorID] = row
		b.chunkIDs[row.ChunkID] = struct{}{}
	}
	return nil
}

// Activate makes buildID visible and drops every other build.
func (s *MetadataStore) Activate(_ context.Context, buildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.builds[buildID]
	if !ok {
		return fmt.Errorf("build %s: %w", buildID, domain.ErrNotFound)
	}

	s.builds = map[string]*build{buildID: b}
	s.active = buildID
	return nil
}

// Discard removes an unactivated build.
func (s *MetadataStore) Discard(_ context.Context, buildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if buildID != s.active {
		delete(s.builds, buildID)
	}
	return nil
}

// FetchByVectorIDs returns rows of the active build for the given IDs.
func (s *MetadataStore) FetchByVectorIDs(_ context.Context, ids []int64) ([]domain.MetadataRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.builds[s.active]
	if b == nil {
		return nil, nil
	}

	var rows []domain.MetadataRow
	for _, id := range ids {
		if row, ok := b.rows[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// VectorIDs returns every vector ID of the active build in ascending order.
func (s *MetadataStore) VectorIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.builds[s.active]
	if b == nil {
		return nil, nil
	}

	ids := make([]int64, 0, len(b.rows))
	for id := range b.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Stats counts the active build.
func (s *MetadataStore) Stats(_ context.Context) (driven.MetadataStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.builds[s.active]
	if b == nil {
		return driven.MetadataStats{}, nil
	}

	docs := make(map[string]struct{})
	for _, row := range b.rows {
		docs[row.DocumentName] = struct{}{}
	}

	return driven.MetadataStats{
		BuildID:   s.active,
		Documents: len(docs),
		Chunks:    len(b.rows),
		Vectors:   len(b.rows),
	}, nil
}

// Close is a no-op for the in-memory store.
func (s *MetadataStore) Close() error {
	return nil
}
