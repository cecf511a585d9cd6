package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// AnswerService generates answers grounded in retrieved chunks.
type AnswerService interface {
	// Ask retrieves topK chunks and asks the LLM to answer from them.
	Ask(ctx context.Context, query string, topK int) (*domain.Answer, error)
}
