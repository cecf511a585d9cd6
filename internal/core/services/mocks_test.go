package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// mockConfigStore is a map-backed ConfigStore.
type mockConfigStore struct {
	mu     sync.Mutex
	data   map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{data: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	v, _ := m.Get(key)
	s, _ := v.([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return "/tmp/config.toml"
}

// mockAIValidator records what it was asked to validate.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

// mockEmbedding maps known texts to fixed vectors; unknown text gets fallback.
type mockEmbedding struct {
	vectors  map[string][]float32
	fallback []float32
	dims     int
	err      error
	batchErr error
	short    bool
	calls    int
}

func (m *mockEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.lookup(text), nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.lookup(t))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedding) lookup(text string) []float32 {
	for key, v := range m.vectors {
		if strings.Contains(text, key) {
			return v
		}
	}
	return m.fallback
}

func (m *mockEmbedding) Dimensions() int              { return m.dims }
func (m *mockEmbedding) ModelName() string            { return "mock-embed" }
func (m *mockEmbedding) Ping(_ context.Context) error { return nil }
func (m *mockEmbedding) Close() error                 { return nil }

// mockLLM returns a canned reply and records the messages it received.
type mockLLM struct {
	reply    string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.messages = messages
	m.opts = opts
	return m.reply, m.err
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockLoader returns fixed documents.
type mockLoader struct {
	docs []domain.Document
	err  error
}

func (m *mockLoader) Load(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockRetrieval returns fixed results.
type mockRetrieval struct {
	results []domain.RetrievalResult
	err     error
	topK    int
}

func (m *mockRetrieval) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievalResult, error) {
	m.topK = topK
	return m.results, m.err
}

var errInjected = errors.New("injected failure")

// faultyMetadataStore wraps the in-memory store with injectable failures.
type faultyMetadataStore struct {
	*memory.MetadataStore
	failBatchAt  int
	failActivate bool
	failFetch    bool
	batches      int
	discarded    []string
}

func newFaultyMetadataStore() *faultyMetadataStore {
	return &faultyMetadataStore{MetadataStore: memory.NewMetadataStore(), failBatchAt: -1}
}

func (f *faultyMetadataStore) InsertBatch(ctx context.Context, buildID string, rows []domain.MetadataRow) error {
	if f.batches == f.failBatchAt {
		return errInjected
	}
	f.batches++
	return f.MetadataStore.InsertBatch(ctx, buildID, rows)
}

func (f *faultyMetadataStore) Activate(ctx context.Context, buildID string) error {
	if f.failActivate {
		return errInjected
	}
	return f.MetadataStore.Activate(ctx, buildID)
}

func (f *faultyMetadataStore) Discard(ctx context.Context, buildID string) error {
	f.discarded = append(f.discarded, buildID)
	return f.MetadataStore.Discard(ctx, buildID)
}

func (f *faultyMetadataStore) FetchByVectorIDs(ctx context.Context, ids []int64) ([]domain.MetadataRow, error) {
	if f.failFetch {
		return nil, errInjected
	}
	return f.MetadataStore.FetchByVectorIDs(ctx, ids)
}

func strPtr(s string) *string { return &s }

func f32Ptr(f float32) *float32 { return &f }

// failingStatsStore fails Stats and delegates everything else.
type failingStatsStore struct {
	driven.MetadataStore
}

func (f *failingStatsStore) Stats(_ context.Context) (driven.MetadataStats, error) {
	return driven.MetadataStats{}, errInjected
}
