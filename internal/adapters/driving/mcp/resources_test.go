package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestExtractQuery(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "plain query",
			uri:      "sercha-rag://retrieve/apples",
			expected: "apples",
		},
		{
			name:     "encoded query",
			uri:      "sercha-rag://retrieve/which%20fruit%3F",
			expected: "which fruit?",
		},
		{
			name:     "invalid prefix",
			uri:      "file://retrieve/apples",
			expected: "",
		},
		{
			name:     "bad escape",
			uri:      "sercha-rag://retrieve/%zz",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractQuery(tt.uri))
		})
	}
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleStatsResource(t *testing.T) {
	stats := &domain.SystemStats{Documents: 1, Chunks: 2, Vectors: 2, IndexedVectors: 2, Dimension: 3, BuildID: "b1"}
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Stats: &mockStatsService{stats: stats}})
	require.NoError(t, err)

	result, err := server.handleStatsResource(context.Background(), readRequest("sercha-rag://stats"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var decoded domain.SystemStats
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &decoded))
	assert.Equal(t, *stats, decoded)
}

func TestServer_handleConsistencyResource(t *testing.T) {
	report := &domain.ConsistencyReport{IndexCount: 2, MetadataCount: 1, MissingMetadata: []int64{1}, MissingVectors: []int64{}}
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Indexing: &mockIndexingService{report: report}})
	require.NoError(t, err)

	result, err := server.handleConsistencyResource(context.Background(), readRequest("sercha-rag://consistency"))

	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, `"missing_metadata": [`)
}

func TestServer_handleRetrieveResource(t *testing.T) {
	mock := &mockRetrievalService{
		results: []domain.RetrievalResult{
			{MetadataRow: domain.MetadataRow{ChunkID: "c0", VectorID: 0, DocumentName: "alpha", ChunkText: "apples"}},
		},
	}
	server, err := NewServer(&Ports{Retrieval: mock})
	require.NoError(t, err)

	t.Run("runs retrieval", func(t *testing.T) {
		result, err := server.handleRetrieveResource(context.Background(), readRequest("sercha-rag://retrieve/red%20fruit"))

		require.NoError(t, err)
		assert.Equal(t, "red fruit", mock.lastQuery)

		var decoded RetrieveOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &decoded))
		assert.Equal(t, 1, decoded.Count)
		assert.Equal(t, "alpha", decoded.Results[0].DocumentName)
	})

	t.Run("empty query is not found", func(t *testing.T) {
		_, err := server.handleRetrieveResource(context.Background(), readRequest("sercha-rag://retrieve/"))

		assert.Error(t, err)
	})
}
