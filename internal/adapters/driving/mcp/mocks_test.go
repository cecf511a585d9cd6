package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results   []domain.RetrievalResult
	err       error
	lastQuery string
	lastTopK  int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	m.lastQuery = query
	m.lastTopK = topK
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	lastTopK int
}

func (m *mockAnswerService) Ask(_ context.Context, _ string, topK int) (*domain.Answer, error) {
	m.lastTopK = topK
	return m.answer, m.err
}

// mockStatsService is a mock implementation of driving.StatsService.
type mockStatsService struct {
	stats *domain.SystemStats
	err   error
}

func (m *mockStatsService) Stats(_ context.Context) (*domain.SystemStats, error) {
	return m.stats, m.err
}

// mockIndexingService is a mock implementation of driving.IndexingService.
type mockIndexingService struct {
	report *domain.ConsistencyReport
	err    error
}

func (m *mockIndexingService) Build(_ context.Context) (*domain.BuildReport, error) {
	return &domain.BuildReport{}, m.err
}

func (m *mockIndexingService) TryBuild(_ context.Context) (*domain.BuildReport, error) {
	return &domain.BuildReport{}, m.err
}

func (m *mockIndexingService) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	return m.report, m.err
}

func f32(v float32) *float32 { return &v }
