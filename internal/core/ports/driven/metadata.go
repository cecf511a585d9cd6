package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// MetadataStore persists per-vector provenance and joins it back by vector ID.
// Rows are grouped into builds; only the active build is visible to reads.
type MetadataStore interface {
	// BeginBuild starts a new, inactive build generation and returns its ID.
	BeginBuild(ctx context.Context) (string, error)

	// InsertBatch stores rows in the given build in one transaction.
	// Fails without writing any row on a duplicate chunk ID or vector ID,
	// whether against earlier batches or within rows itself.
	InsertBatch(ctx context.Context, buildID string, rows []domain.MetadataRow) error

	// Activate makes buildID the visible build and discards older ones.
	Activate(ctx context.Context, buildID string) error

	// Discard removes an unfinished build.
	Discard(ctx context.Context, buildID string) error

	// FetchByVectorIDs returns rows of the active build for the given IDs.
	// Unknown IDs are skipped. Row order is unspecified.
	FetchByVectorIDs(ctx context.Context, ids []int64) ([]domain.MetadataRow, error)

	// VectorIDs returns every vector ID of the active build in ascending order.
	VectorIDs(ctx context.Context) ([]int64, error)

	// Stats counts distinct documents, rows and distinct vectors of the active build.
	Stats(ctx context.Context) (MetadataStats, error)

	// Close releases resources.
	Close() error
}

// MetadataStats holds aggregate counts for the active build.
type MetadataStats struct {
	BuildID   string
	Documents int
	Chunks    int
	Vectors   int
}
