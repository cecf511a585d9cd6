package domain

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAIProvider_IsValid tests recognised and unknown providers
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{name: "ollama", provider: AIProviderOllama, expected: true},
		{name: "openai", provider: AIProviderOpenAI, expected: true},
		{name: "anthropic", provider: AIProviderAnthropic, expected: true},
		{name: "hashing", provider: AIProviderHashing, expected: true},
		{name: "empty", provider: AIProvider(""), expected: false},
		{name: "unknown", provider: AIProvider("faiss"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProviderHashing.RequiresAPIKey())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

// TestChunkingSettings_Validate tests the overlap precondition
func TestChunkingSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings ChunkingSettings
		wantErr  bool
	}{
		{name: "defaults", settings: ChunkingSettings{ChunkSize: 500, Overlap: 100, MinChunkLength: 100}},
		{name: "zero overlap", settings: ChunkingSettings{ChunkSize: 10, Overlap: 0}},
		{name: "zero chunk size", settings: ChunkingSettings{ChunkSize: 0}, wantErr: true},
		{name: "negative overlap", settings: ChunkingSettings{ChunkSize: 10, Overlap: -1}, wantErr: true},
		{name: "overlap equals size", settings: ChunkingSettings{ChunkSize: 10, Overlap: 10}, wantErr: true},
		{name: "overlap exceeds size", settings: ChunkingSettings{ChunkSize: 10, Overlap: 20}, wantErr: true},
		{name: "negative min length", settings: ChunkingSettings{ChunkSize: 10, MinChunkLength: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderHashing}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "sk"}.IsConfigured())
	assert.False(t, EmbeddingSettings{}.IsConfigured())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderHashing}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	dataDir := filepath.Join("tmp", "data")
	settings := DefaultAppSettings(dataDir)

	assert.Equal(t, 500, settings.Chunking.ChunkSize)
	assert.Equal(t, 100, settings.Chunking.Overlap)
	assert.Equal(t, 100, settings.Chunking.MinChunkLength)
	assert.Equal(t, 3, settings.Retrieval.TopK)
	assert.Equal(t, filepath.Join(dataDir, "index", "vectors.idx"), settings.Index.Path)
	assert.Equal(t, filepath.Join(dataDir, "metadata.db"), settings.Store.DSN)
	assert.Equal(t, AIProviderOllama, settings.Embedding.Provider)
	assert.InDelta(t, 0.2, settings.LLM.Temperature, 1e-9)
	require.NoError(t, settings.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	settings := DefaultAppSettings("data")
	settings.Index.Path = ""
	assert.ErrorIs(t, settings.Validate(), ErrInvalidConfig)

	settings = DefaultAppSettings("data")
	settings.Retrieval.TopK = 0
	assert.ErrorIs(t, settings.Validate(), ErrInvalidConfig)

	settings = DefaultAppSettings("data")
	settings.Chunking.Overlap = settings.Chunking.ChunkSize
	err := settings.Validate()
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	for _, model := range DefaultEmbeddingModels() {
		assert.Contains(t, dims, model)
	}
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
}

func TestPipelineConfigFor(t *testing.T) {
	cfg := PipelineConfigFor(ChunkingSettings{ChunkSize: 50, Overlap: 5, MinChunkLength: 7})

	assert.Equal(t, []string{"chunker", "minlength"}, cfg.Processors)
	assert.Equal(t, 50, cfg.GetProcessorConfig("chunker")["chunk_size"])
	assert.Equal(t, 5, cfg.GetProcessorConfig("chunker")["overlap"])
	assert.Equal(t, 7, cfg.GetProcessorConfig("minlength")["min_chunk_length"])
	assert.Nil(t, cfg.GetProcessorConfig("missing"))

	var empty PipelineConfig
	assert.Nil(t, empty.GetProcessorConfig("chunker"))
}
