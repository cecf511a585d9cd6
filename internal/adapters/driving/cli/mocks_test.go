package cli

import (
	"bytes"
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type mockRetrievalService struct {
	results  []domain.RetrievalResult
	err      error
	lastTopK int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievalResult, error) {
	m.lastTopK = topK
	return m.results, m.err
}

type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	lastTopK int
}

func (m *mockAnswerService) Ask(_ context.Context, _ string, topK int) (*domain.Answer, error) {
	m.lastTopK = topK
	return m.answer, m.err
}

type mockStatsService struct {
	stats *domain.SystemStats
	err   error
}

func (m *mockStatsService) Stats(_ context.Context) (*domain.SystemStats, error) {
	return m.stats, m.err
}

type mockIndexingService struct {
	report *domain.BuildReport
	check  *domain.ConsistencyReport
	err    error
	builds int
}

func (m *mockIndexingService) Build(_ context.Context) (*domain.BuildReport, error) {
	m.builds++
	return m.report, m.err
}

func (m *mockIndexingService) TryBuild(ctx context.Context) (*domain.BuildReport, error) {
	return m.Build(ctx)
}

func (m *mockIndexingService) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	return m.check, m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]string
	setErr      error
	validateErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings("/data"),
		set:      make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = p
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = p
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings("/data")
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	retrieval *mockRetrievalService
	answer    *mockAnswerService
	stats     *mockStatsService
	indexing  *mockIndexingService
	settings  *mockSettingsService
}

// setupTestServices installs mocks for every service and returns a
// cleanup that restores the previous state and flag defaults.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		retrieval: &mockRetrievalService{},
		answer:    &mockAnswerService{answer: &domain.Answer{}},
		stats:     &mockStatsService{stats: &domain.SystemStats{}},
		indexing:  &mockIndexingService{report: &domain.BuildReport{}, check: &domain.ConsistencyReport{}},
		settings:  newMockSettingsService(),
	}

	oldBootstrap := bootstrap
	oldTopK := defaultTopK
	bootstrap = nil
	SetServices(&Services{
		Settings:  ts.settings,
		Stats:     ts.stats,
		Indexing:  ts.indexing,
		Retrieval: ts.retrieval,
		Answer:    ts.answer,
		TopK:      3,
	})

	return ts, func() {
		bootstrap = oldBootstrap
		defaultTopK = oldTopK
		settingsService = nil
		statsService = nil
		indexingService = nil
		retrievalService = nil
		answerService = nil
		documentsDir = ""
		closeServices = nil
		resetFlags()
	}
}

// resetFlags restores flag variables, which persist between Execute calls.
func resetFlags() {
	verbose = false
	configDir = ""
	indexWatch = false
	retrieveTopK = 0
	retrieveJSON = false
	askTopK = 0
	askJSON = false
	statsFormat = formatText
	verifyFormat = formatText
	mcpHTTPAddr = ""
	serveAddr = ":8000"
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
