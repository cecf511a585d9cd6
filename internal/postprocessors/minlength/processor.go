// Package minlength provides a processor that drops undersized chunks.
package minlength

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DefaultMinChunkLength is the default minimum chunk length in characters.
const DefaultMinChunkLength = 100

// Processor drops chunks shorter than a minimum length.
// Surviving chunks keep their original sequence numbers.
type Processor struct {
	minLength int
}

// New creates a filter keeping chunks of at least minLength characters.
func New(minLength int) (*Processor, error) {
	if minLength < 0 {
		return nil, fmt.Errorf("%w: min chunk length must not be negative", domain.ErrInvalidConfig)
	}
	return &Processor{minLength: minLength}, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "minlength"
}

// Process filters chunks in place order.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if p.minLength == 0 {
		return chunks, nil
	}

	kept := chunks[:0:0]
	for _, c := range chunks {
		if utf8.RuneCountInString(c.Text) < p.minLength {
			continue
		}
		kept = append(kept, c)
	}

	return kept, nil
}
