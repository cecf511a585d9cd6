// Package mcp provides an MCP (Model Context Protocol) server adapter for sercha-rag.
// It lets AI assistants retrieve passages from the local index and ask grounded questions.
package mcp

import (
	"errors"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrToolUnavailable is returned when a tool's backing service is not configured.
var ErrToolUnavailable = errors.New("mcp: tool is not available")

// ToolError carries a message meant for the calling assistant.
type ToolError struct {
	Message string
	Err     error
}

func (e *ToolError) Error() string { return e.Message }

func (e *ToolError) Unwrap() error { return e.Err }

// toolError translates core errors into actionable text.
func toolError(err error) error {
	if err == nil {
		return nil
	}
	return &ToolError{Message: userMessage(err), Err: err}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexNotLoaded):
		return "the index has not been built yet; run 'sercha-rag index' first"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return "no embedding provider is available; run 'sercha-rag settings' to configure one"
	case errors.Is(err, domain.ErrLLMUnavailable):
		return "no LLM provider is configured; answer generation is disabled"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid input: " + err.Error()
	case errors.Is(err, domain.ErrDimensionMismatch):
		return "the index was built with a different embedding model; rebuild it with 'sercha-rag index'"
	case errors.Is(err, ErrToolUnavailable):
		return err.Error()
	default:
		return err.Error()
	}
}
