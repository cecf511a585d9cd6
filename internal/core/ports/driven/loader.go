package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentLoader reads every document of the configured source.
// Each readable file yields exactly one Document.
type DocumentLoader interface {
	// Load returns all documents in a deterministic order.
	Load(ctx context.Context) ([]domain.Document, error)
}
