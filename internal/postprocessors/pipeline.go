// Package postprocessors provides the chunking pipeline and its stages.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Pipeline chains multiple PostProcessors and runs them in order.
// It implements the PostProcessorPipeline interface.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the document through all processors in order.
// The first processor receives nil chunks and should create them.
// Subsequent processors receive and may modify the chunks.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk

	for _, processor := range p.processors {
		var err error
		chunks, err = processor.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return chunks, nil
}

// ChunkDocuments runs every document through the pipeline and concatenates
// the chunks in document order. Chunk numbering is per document.
func (p *Pipeline) ChunkDocuments(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error) {
	var all []domain.Chunk

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunks, err := p.Process(ctx, &docs[i])
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", docs[i].DocID, err)
		}
		all = append(all, chunks...)
	}

	return all, nil
}

// FromConfig builds a pipeline from registered processors in configured order.
func FromConfig(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	p := NewPipeline()

	for _, name := range cfg.Processors {
		processor, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		p.Add(processor)
	}

	return p, nil
}

// NewChunkingPipeline returns the chunker + minlength pipeline for the settings.
func NewChunkingPipeline(settings domain.ChunkingSettings) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	r := NewRegistry()
	RegisterDefaults(r)
	return FromConfig(r, domain.PipelineConfigFor(settings))
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
