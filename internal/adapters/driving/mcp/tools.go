package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to look up"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	VectorID      int64    `json:"vector_id"`
	ChunkID       string   `json:"chunk_id,omitempty"`
	DocumentName  string   `json:"document_name"`
	PageOrSection *string  `json:"page_or_section,omitempty"`
	Score         *float32 `json:"score,omitempty"`
	Text          string   `json:"text,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks given to the model"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string               `json:"answer"`
	Citations []ChunkOutput        `json:"citations"`
	Metrics   domain.AnswerMetrics `json:"metrics"`
}

// StatsInput is the (empty) input schema for the stats tool.
type StatsInput struct{}

// VerifyInput is the (empty) input schema for the verify tool.
type VerifyInput struct{}

// VerifyOutput is the output schema for the verify tool.
type VerifyOutput struct {
	IndexCount      int     `json:"index_count"`
	MetadataCount   int     `json:"metadata_count"`
	MissingMetadata []int64 `json:"missing_metadata"`
	MissingVectors  []int64 `json:"missing_vectors"`
	Consistent      bool    `json:"consistent"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the indexed document chunks most similar to a query",
	}, s.handleRetrieve)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using only the indexed documents, with citations",
		}, s.handleAsk)
	}

	if s.ports.Stats != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "stats",
			Description: "Report document, chunk and vector counts",
		}, s.handleStats)
	}

	if s.ports.Indexing != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "verify",
			Description: "Check that every indexed vector has a metadata row and vice versa",
		}, s.handleVerify)
	}
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, s.resolveTopK(input.TopK))
	if err != nil {
		return nil, RetrieveOutput{}, toolError(err)
	}

	output := RetrieveOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = ChunkOutput{
			VectorID:      results[i].VectorID,
			ChunkID:       results[i].ChunkID,
			DocumentName:  results[i].DocumentName,
			PageOrSection: results[i].PageOrSection,
			Score:         results[i].Score,
			Text:          results[i].ChunkText,
		}
	}
	return nil, output, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answer == nil {
		return nil, AskOutput{}, toolError(ErrToolUnavailable)
	}

	answer, err := s.ports.Answer.Ask(ctx, input.Question, s.resolveTopK(input.TopK))
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:    answer.Answer,
		Citations: make([]ChunkOutput, len(answer.Citations)),
		Metrics:   answer.Metrics,
	}
	for i, c := range answer.Citations {
		output.Citations[i] = ChunkOutput{
			VectorID:      c.VectorID,
			DocumentName:  c.DocumentName,
			PageOrSection: c.PageOrSection,
			Score:         c.Score,
		}
	}
	return nil, output, nil
}

func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, domain.SystemStats, error) {
	if s.ports.Stats == nil {
		return nil, domain.SystemStats{}, toolError(ErrToolUnavailable)
	}

	stats, err := s.ports.Stats.Stats(ctx)
	if err != nil {
		return nil, domain.SystemStats{}, toolError(err)
	}
	return nil, *stats, nil
}

func (s *Server) handleVerify(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ VerifyInput,
) (*mcp.CallToolResult, VerifyOutput, error) {
	if s.ports.Indexing == nil {
		return nil, VerifyOutput{}, toolError(ErrToolUnavailable)
	}

	report, err := s.ports.Indexing.Verify(ctx)
	if err != nil {
		return nil, VerifyOutput{}, toolError(err)
	}
	output := VerifyOutput{
		IndexCount:      report.IndexCount,
		MetadataCount:   report.MetadataCount,
		MissingMetadata: nonNil(report.MissingMetadata),
		MissingVectors:  nonNil(report.MissingVectors),
		Consistent:      report.Consistent(),
	}
	return nil, output, nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
