package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// StatsService reports system-level figures.
type StatsService interface {
	// Stats counts documents, chunks and vectors across both stores.
	Stats(ctx context.Context) (*domain.SystemStats, error)
}
