package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IndexingService runs full rebuilds and checks cross-store consistency.
type IndexingService interface {
	// Build runs load, chunk, embed, index and metadata persistence.
	// On domain.ErrPartialBuild the returned report carries the counts reached.
	Build(ctx context.Context) (*domain.BuildReport, error)

	// TryBuild is Build, but returns domain.ErrBuildInProgress instead of
	// waiting when another build is running.
	TryBuild(ctx context.Context) (*domain.BuildReport, error)

	// Verify compares the index ID set with the metadata ID set.
	Verify(ctx context.Context) (*domain.ConsistencyReport, error)
}
