package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval finds relevant chunks. Required.
	Retrieval driving.RetrievalService

	// Answer generates grounded answers. Nil disables the ask tool.
	Answer driving.AnswerService

	// Stats reports index and metadata counts.
	Stats driving.StatsService

	// Indexing checks consistency between the index and the metadata store.
	Indexing driving.IndexingService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
