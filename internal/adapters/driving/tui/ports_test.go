package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// MockRetrievalService implements driving.RetrievalService for testing.
type MockRetrievalService struct {
	RetrieveFunc func(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error)
}

func (m *MockRetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, query, topK)
	}
	return nil, nil
}

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	AskFunc func(ctx context.Context, query string, topK int) (*domain.Answer, error)
}

func (m *MockAnswerService) Ask(ctx context.Context, query string, topK int) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, query, topK)
	}
	return &domain.Answer{}, nil
}

// MockStatsService implements driving.StatsService for testing.
type MockStatsService struct {
	StatsFunc func(ctx context.Context) (*domain.SystemStats, error)
}

func (m *MockStatsService) Stats(ctx context.Context) (*domain.SystemStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &domain.SystemStats{}, nil
}

// MockIndexingService implements driving.IndexingService for testing.
type MockIndexingService struct {
	BuildFunc  func(ctx context.Context) (*domain.BuildReport, error)
	VerifyFunc func(ctx context.Context) (*domain.ConsistencyReport, error)
}

func (m *MockIndexingService) Build(ctx context.Context) (*domain.BuildReport, error) {
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx)
	}
	return &domain.BuildReport{}, nil
}

func (m *MockIndexingService) TryBuild(ctx context.Context) (*domain.BuildReport, error) {
	return m.Build(ctx)
}

func (m *MockIndexingService) Verify(ctx context.Context) (*domain.ConsistencyReport, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx)
	}
	return &domain.ConsistencyReport{}, nil
}

var (
	_ driving.RetrievalService = (*MockRetrievalService)(nil)
	_ driving.AnswerService    = (*MockAnswerService)(nil)
	_ driving.StatsService     = (*MockStatsService)(nil)
	_ driving.IndexingService  = (*MockIndexingService)(nil)
)

func TestNewPorts(t *testing.T) {
	retrieval := &MockRetrievalService{}
	answer := &MockAnswerService{}
	stats := &MockStatsService{}
	indexing := &MockIndexingService{}

	ports := NewPorts(retrieval, answer, stats, indexing)

	assert.Equal(t, retrieval, ports.Retrieval)
	assert.Equal(t, answer, ports.Answer)
	assert.Equal(t, stats, ports.Stats)
	assert.Equal(t, indexing, ports.Indexing)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{
			name:  "all set",
			ports: NewPorts(&MockRetrievalService{}, &MockAnswerService{}, &MockStatsService{}, &MockIndexingService{}),
		},
		{
			name:  "optional ports nil",
			ports: NewPorts(&MockRetrievalService{}, nil, &MockStatsService{}, nil),
		},
		{
			name:  "missing retrieval",
			ports: NewPorts(nil, &MockAnswerService{}, &MockStatsService{}, nil),
			want:  ErrMissingRetrievalService,
		},
		{
			name:  "missing stats",
			ports: NewPorts(&MockRetrievalService{}, nil, nil, nil),
			want:  ErrMissingStatsService,
		},
		{
			name: "nil ports",
			want: ErrMissingRetrievalService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
