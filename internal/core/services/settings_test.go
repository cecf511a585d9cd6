package services

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const testDataDir = "/data/sercha-rag"

func newSettings(t *testing.T) (*SettingsService, *mockConfigStore) {
	t.Helper()
	store := newMockConfigStore()
	return NewSettingsService(store, nil, testDataDir), store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newSettings(t)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings(testDataDir)
	assert.Equal(t, defaults, *settings)
	assert.Equal(t, filepath.Join(testDataDir, "metadata.db"), settings.Store.DSN)
	assert.Equal(t, 500, settings.Chunking.ChunkSize)
	assert.Equal(t, 100, settings.Chunking.Overlap)
	assert.Equal(t, 3, settings.Retrieval.TopK)
	assert.InDelta(t, 0.2, settings.LLM.Temperature, 1e-9)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newSettings(t)
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("chunking.overlap", 0)
	_ = store.Set("llm.temperature", 0.0)
	_ = store.Set("store.dsn", "postgres://localhost/rag")

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, 0, settings.Chunking.Overlap)
	assert.Zero(t, settings.LLM.Temperature)
	assert.Equal(t, "postgres://localhost/rag", settings.Store.DSN)
}

func TestSettingsService_Get_ProviderWithoutModelUsesProviderDefault(t *testing.T) {
	service, store := newSettings(t)
	_ = store.Set("llm.provider", "anthropic")

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)
}

func TestSettingsService_Get_InvalidProviderReturnsDefault(t *testing.T) {
	service, store := newSettings(t)
	_ = store.Set("embedding.provider", "invalid_provider")

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
}

func TestSettingsService_Save_RoundTrip(t *testing.T) {
	service, store := newSettings(t)

	settings := domain.DefaultAppSettings("/srv")
	settings.Embedding.APIKey = ""
	settings.LLM.Provider = domain.AIProviderOpenAI
	settings.LLM.APIKey = "sk-test"
	settings.Chunking.ChunkSize = 800

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, 800, store.GetInt("chunking.chunk_size"))
	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, "sk-test", store.GetString("llm.api_key"))
	_, hasEmbedKey := store.Get("embedding.api_key")
	assert.False(t, hasEmbedKey)

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Save_StoreError(t *testing.T) {
	service, store := newSettings(t)
	store.setErr = errors.New("disk full")

	settings := service.GetDefaults()
	err := service.Save(&settings)

	assert.ErrorContains(t, err, "disk full")
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, s *domain.AppSettings)
	}{
		{"chunking.chunk_size", "800", func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, 800, s.Chunking.ChunkSize) }},
		{"chunking.overlap", " 0 ", func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, 0, s.Chunking.Overlap) }},
		{"llm.temperature", "0.7", func(t *testing.T, s *domain.AppSettings) { assert.InDelta(t, 0.7, s.LLM.Temperature, 1e-9) }},
		{"embedding.provider", "hashing", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.AIProviderHashing, s.Embedding.Provider)
			assert.Equal(t, "hashing-v1", s.Embedding.Model)
		}},
		{"documents_dir", "/srv/docs", func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, "/srv/docs", s.DocumentsDir) }},
		{"retrieval.top_k", "10", func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, 10, s.Retrieval.TopK) }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			service, _ := newSettings(t)

			require.NoError(t, service.Set(tt.key, tt.value))

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"unknown key", "search.mode", "hybrid", domain.ErrInvalidInput},
		{"non-integer", "chunking.chunk_size", "big", domain.ErrInvalidInput},
		{"non-number", "llm.temperature", "warm", domain.ErrInvalidInput},
		{"overlap not below chunk size", "chunking.overlap", "500", domain.ErrInvalidConfig},
		{"negative overlap", "chunking.overlap", "-1", domain.ErrInvalidConfig},
		{"zero top_k", "retrieval.top_k", "0", domain.ErrInvalidConfig},
		{"anthropic embeddings", "embedding.provider", "anthropic", domain.ErrInvalidInput},
		{"hashing llm", "llm.provider", "hashing", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newSettings(t)

			err := service.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, tt.wantErr)
			_, written := store.Get(tt.key)
			assert.False(t, written)
		})
	}
}

func TestSettingsService_SettingKeysAreSorted(t *testing.T) {
	keys := SettingKeys()

	assert.Contains(t, keys, "store.dsn")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service, _ := newSettings(t)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-test"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, 1536, settings.Embedding.Dimensions)
	assert.Equal(t, "", settings.Embedding.BaseURL)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
}

func TestSettingsService_SetEmbeddingProvider_OllamaGetsBaseURL(t *testing.T) {
	service, _ := newSettings(t)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "nomic-embed-text", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	assert.Equal(t, 768, settings.Embedding.Dimensions)
}

func TestSettingsService_SetEmbeddingProvider_Errors(t *testing.T) {
	service, _ := newSettings(t)

	assert.Error(t, service.SetEmbeddingProvider("bogus", "", ""))
	assert.ErrorContains(t, service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "key"), "does not support embeddings")
	assert.ErrorContains(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""), "API key required")
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service, _ := newSettings(t)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)
}

func TestSettingsService_SetLLMProvider_Errors(t *testing.T) {
	service, _ := newSettings(t)

	assert.Error(t, service.SetLLMProvider("bogus", "", ""))
	assert.ErrorContains(t, service.SetLLMProvider(domain.AIProviderHashing, "", ""), "does not support")
	assert.ErrorContains(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", ""), "API key required")
}

func TestSettingsService_Validate(t *testing.T) {
	service, store := newSettings(t)
	require.NoError(t, service.Validate())

	_ = store.Set("embedding.provider", "openai")
	assert.ErrorIs(t, service.Validate(), domain.ErrInvalidConfig)

	_ = store.Set("embedding.api_key", "sk")
	assert.NoError(t, service.Validate())

	_ = store.Set("chunking.overlap", 900)
	assert.ErrorIs(t, service.Validate(), domain.ErrInvalidConfig)
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	validator := &mockAIValidator{llmErr: errors.New("unreachable")}
	service := NewSettingsService(newMockConfigStore(), validator, testDataDir)

	require.NoError(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.embedding)
	assert.Equal(t, domain.AIProviderOllama, validator.embedding.Provider)

	assert.ErrorContains(t, service.ValidateLLMConfig(), "unreachable")
}

func TestSettingsService_ValidateProviders_NilValidator(t *testing.T) {
	service, _ := newSettings(t)

	assert.NoError(t, service.ValidateEmbeddingConfig())
	assert.NoError(t, service.ValidateLLMConfig())
}
