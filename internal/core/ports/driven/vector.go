package driven

import "context"

// VectorIndex provides exact nearest-neighbour search addressed by explicit IDs.
// Similarity is the inner product, which equals cosine for unit-norm inputs.
type VectorIndex interface {
	// Add inserts each (id, vector) pair. The first call fixes the dimension;
	// later calls with a different dimension fail with domain.ErrDimensionMismatch.
	// IDs must be unique within one build.
	Add(ctx context.Context, ids []int64, vectors [][]float32) error

	// Search returns up to k hits ranked by descending similarity.
	// Returns domain.ErrIndexNotLoaded when nothing has been added or loaded.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Save persists the complete index to path, replacing any previous file.
	Save(path string) error

	// Load replaces the index contents with the file at path.
	Load(path string) error

	// Len returns the number of stored vectors.
	Len() int

	// Dimension returns the established dimension, or 0 when empty.
	Dimension() int

	// IDs returns every stored vector ID in ascending order.
	IDs() []int64

	// Close releases resources.
	Close() error
}

// IndexStore owns the live VectorIndex and swaps in freshly built ones.
// Queries keep using the index they obtained from Current until they finish.
type IndexStore interface {
	// Current returns the live index, or nil when none is loaded.
	Current() VectorIndex

	// Stage returns a fresh empty index for a build.
	Stage() VectorIndex

	// Publish saves idx and makes it the live index.
	Publish(idx VectorIndex) error

	// Path returns the persisted index location.
	Path() string

	// Close releases the live index.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched vector ID. Negative IDs are "no result" sentinels.
	ID int64

	// Score is the inner-product similarity.
	Score float32
}
