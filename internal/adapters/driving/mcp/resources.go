package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for sercha-rag resources.
	uriScheme = "sercha-rag://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Stats != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "stats",
			Name:        "stats",
			Description: "Document, chunk and vector counts of the active index",
			MIMEType:    "application/json",
		}, s.handleStatsResource)
	}

	if s.ports.Indexing != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "consistency",
			Name:        "consistency",
			Description: "Vector IDs present in only one of the index and the metadata store",
			MIMEType:    "application/json",
		}, s.handleConsistencyResource)
	}

	// Template for ad-hoc retrieval.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "retrieve/{query}",
		Name:        "retrieve",
		Description: "Chunks most similar to a URL-encoded query",
		MIMEType:    "application/json",
	}, s.handleRetrieveResource)
}

func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Stats.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", toolError(err))
	}
	return jsonResource(req.Params.URI, stats)
}

func (s *Server) handleConsistencyResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	report, err := s.ports.Indexing.Verify(ctx)
	if err != nil {
		return nil, fmt.Errorf("verifying index: %w", toolError(err))
	}
	return jsonResource(req.Params.URI, report)
}

// handleRetrieveResource runs retrieval for sercha-rag://retrieve/{query}.
func (s *Server) handleRetrieveResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	query := extractQuery(req.Params.URI)
	if query == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	_, output, err := s.handleRetrieve(ctx, nil, RetrieveInput{Query: query})
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, output)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractQuery extracts the decoded query from a URI like sercha-rag://retrieve/{query}.
func extractQuery(uri string) string {
	const prefix = uriScheme + "retrieve/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	query, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(query)
}
