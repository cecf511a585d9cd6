package flat

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores vectors addressed by explicit int64 IDs.
type Index struct {
	mu     sync.RWMutex
	ready  bool
	dim    int
	ids    []int64
	data   []float32 // len(ids) * dim, row-major
	closed bool
}

// New creates an empty index. The dimension is fixed by the first Add.
func New() *Index {
	return &Index{}
}

// Add inserts each (id, vector) pair.
// The batch is validated before any vector is stored.
func (idx *Index) Add(ctx context.Context, ids []int64, vectors [][]float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrInvalidInput, len(ids), len(vectors))
	}
	if len(ids) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return fmt.Errorf("flat: %w: index is closed", domain.ErrIndexNotLoaded)
	}

	dim := idx.dim
	if !idx.ready {
		dim = len(vectors[0])
		if dim == 0 {
			return fmt.Errorf("%w: empty vector", domain.ErrInvalidInput)
		}
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, ids[i], len(v), dim)
		}
	}

	idx.dim = dim
	idx.ready = true
	idx.ids = append(idx.ids, ids...)
	for _, v := range vectors {
		idx.data = append(idx.data, v...)
	}

	return nil
}

// Search returns up to k hits ranked by descending inner product.
// Equal scores are ordered by ascending ID.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.ready || idx.closed {
		return nil, domain.ErrIndexNotLoaded
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	k = min(k, len(idx.ids))
	h := make(hitHeap, 0, k)

	for row, id := range idx.ids {
		hit := driven.VectorHit{ID: id, Score: dot(query, idx.data[row*idx.dim:(row+1)*idx.dim])}

		if len(h) < k {
			heap.Push(&h, hit)
			continue
		}
		if ranksBefore(hit, h[0]) {
			h[0] = hit
			heap.Fix(&h, 0)
		}
	}

	hits := []driven.VectorHit(h)
	sort.Slice(hits, func(i, j int) bool {
		return ranksBefore(hits[i], hits[j])
	})

	return hits, nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

// Dimension returns the established dimension, or 0 before the first Add or Load.
func (idx *Index) Dimension() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dim
}

// IDs returns every stored ID in ascending order.
func (idx *Index) IDs() []int64 {
	idx.mu.RLock()
	ids := make([]int64, len(idx.ids))
	copy(ids, idx.ids)
	idx.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close releases the stored vectors.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.closed = true
	idx.ids = nil
	idx.data = nil
	return nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// ranksBefore reports whether a ranks ahead of b: higher score first, then lower ID.
func ranksBefore(a, b driven.VectorHit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}

// hitHeap keeps the current top-k with the worst-ranked hit at the root.
type hitHeap []driven.VectorHit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return ranksBefore(h[j], h[i]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x any) { *h = append(*h, x.(driven.VectorHit)) }

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
