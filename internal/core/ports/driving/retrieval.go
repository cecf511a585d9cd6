package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrievalService answers "which passages are relevant to this query".
type RetrievalService interface {
	// Retrieve returns at most topK metadata rows with scores attached,
	// sorted by descending similarity. An empty result is not an error.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error)
}
