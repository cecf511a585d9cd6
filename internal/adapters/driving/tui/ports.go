// Package tui provides an interactive terminal user interface for sercha-rag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval finds chunks similar to a query.
	Retrieval driving.RetrievalService

	// Answer generates grounded answers. Nil disables the chat view.
	Answer driving.AnswerService

	// Stats reports dashboard figures.
	Stats driving.StatsService

	// Indexing rebuilds and verifies the index from the dashboard.
	Indexing driving.IndexingService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	retrieval driving.RetrievalService,
	answer driving.AnswerService,
	stats driving.StatsService,
	indexing driving.IndexingService,
) *Ports {
	return &Ports{
		Retrieval: retrieval,
		Answer:    answer,
		Stats:     stats,
		Indexing:  indexing,
	}
}

// Validate ensures all required ports are set.
// Returns an error if a required port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Stats == nil {
		return ErrMissingStatsService
	}
	return nil
}
