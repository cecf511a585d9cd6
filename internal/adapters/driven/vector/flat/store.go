package flat

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Store holds the live index and swaps in freshly built ones.
// Readers that obtained an index from Current keep using it after a swap.
type Store struct {
	path string
	live atomic.Pointer[Index]
}

// NewStore creates a store persisting to path. Nothing is loaded until Open.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: index path is required", domain.ErrInvalidConfig)
	}
	return &Store{path: path}, nil
}

// Open loads the persisted index if one exists.
// A missing file leaves the store without a live index and is not an error.
func (s *Store) Open() error {
	idx := New()
	if err := idx.Load(s.path); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	s.live.Store(idx)
	return nil
}

// Current returns the live index, or nil when none is loaded.
func (s *Store) Current() driven.VectorIndex {
	idx := s.live.Load()
	if idx == nil {
		return nil
	}
	return idx
}

// Stage returns a fresh empty index for a build.
func (s *Store) Stage() driven.VectorIndex {
	return New()
}

// Publish saves idx to the store path and makes it the live index.
// The previous index is left for in-flight readers and reclaimed by the GC.
func (s *Store) Publish(idx driven.VectorIndex) error {
	staged, ok := idx.(*Index)
	if !ok {
		return fmt.Errorf("%w: flat store cannot publish %T", domain.ErrUnsupportedType, idx)
	}

	if err := staged.Save(s.path); err != nil {
		return fmt.Errorf("publish index: %w", err)
	}

	s.live.Store(staged)
	return nil
}

// Path returns the persisted index location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the live index.
func (s *Store) Close() error {
	if idx := s.live.Swap(nil); idx != nil {
		return idx.Close()
	}
	return nil
}
