package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
)

func mapLookup(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func newBase(t *testing.T) *file.ConfigStore {
	t.Helper()
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestVarName(t *testing.T) {
	assert.Equal(t, "SERCHA_RAG_EMBEDDING_API_KEY", VarName("embedding.api_key"))
	assert.Equal(t, "SERCHA_RAG_DOCUMENTS_DIR", VarName("documents_dir"))
	assert.Equal(t, "SERCHA_RAG_STORE_DSN", VarName("store.dsn"))
}

func TestOverlay_EnvWinsOverBase(t *testing.T) {
	base := newBase(t)
	require.NoError(t, base.Set("embedding.model", "bge-m3"))
	require.NoError(t, base.Set("retrieval.top_k", 3))

	o := NewOverlay(base, WithLookup(mapLookup(map[string]string{
		"SERCHA_RAG_EMBEDDING_MODEL": "nomic-embed-text",
		"SERCHA_RAG_RETRIEVAL_TOP_K": "8",
		"SERCHA_RAG_LLM_TEMPERATURE": "0.5",
		"SERCHA_RAG_WATCH_ENABLED":   "yes",
		"SERCHA_RAG_LOADER_EXTS":     ".txt, .md,,",
	})))

	assert.Equal(t, "nomic-embed-text", o.GetString("embedding.model"))
	assert.Equal(t, 8, o.GetInt("retrieval.top_k"))
	assert.InDelta(t, 0.5, o.GetFloat("llm.temperature"), 1e-9)
	assert.False(t, o.GetBool("watch.enabled"))
	assert.Equal(t, []string{".txt", ".md"}, o.GetStringSlice("loader.exts"))

	v, ok := o.Get("embedding.model")
	assert.True(t, ok)
	assert.Equal(t, "nomic-embed-text", v)
}

func TestOverlay_FallsBackToBase(t *testing.T) {
	base := newBase(t)
	require.NoError(t, base.Set("chunking.chunk_size", 800))

	o := NewOverlay(base, WithLookup(mapLookup(nil)))

	assert.Equal(t, 800, o.GetInt("chunking.chunk_size"))
	assert.Equal(t, "", o.GetString("llm.model"))
	assert.Equal(t, base.Path(), o.Path())
}

func TestOverlay_ProviderAPIKeyFallback(t *testing.T) {
	base := newBase(t)
	require.NoError(t, base.Set("embedding.provider", "openai"))
	require.NoError(t, base.Set("llm.provider", "anthropic"))

	o := NewOverlay(base, WithLookup(mapLookup(map[string]string{
		"OPENAI_API_KEY":    "sk-openai",
		"ANTHROPIC_API_KEY": "sk-ant",
	})))

	assert.Equal(t, "sk-openai", o.GetString("embedding.api_key"))
	assert.Equal(t, "sk-ant", o.GetString("llm.api_key"))
}

func TestOverlay_PrefixedAPIKeyBeatsProviderVar(t *testing.T) {
	base := newBase(t)
	require.NoError(t, base.Set("llm.provider", "openai"))

	o := NewOverlay(base, WithLookup(mapLookup(map[string]string{
		"OPENAI_API_KEY":         "generic",
		"SERCHA_RAG_LLM_API_KEY": "specific",
	})))

	assert.Equal(t, "specific", o.GetString("llm.api_key"))
}

func TestOverlay_NoFallbackForLocalProvider(t *testing.T) {
	base := newBase(t)
	require.NoError(t, base.Set("llm.provider", "ollama"))
	require.NoError(t, base.Set("llm.api_key", "stored"))

	o := NewOverlay(base, WithLookup(mapLookup(map[string]string{"OPENAI_API_KEY": "x"})))

	assert.Equal(t, "stored", o.GetString("llm.api_key"))
}

func TestOverlay_SetWritesBase(t *testing.T) {
	base := newBase(t)
	o := NewOverlay(base, WithLookup(mapLookup(nil)))

	require.NoError(t, o.Set("index.path", "/tmp/x.idx"))
	assert.Equal(t, "/tmp/x.idx", base.GetString("index.path"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SERCHA_RAG_TEST_DOTENV=loaded\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("SERCHA_RAG_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv("SERCHA_RAG_TEST_DOTENV"))
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SERCHA_RAG_TEST_KEEP=file\n"), 0600))
	t.Setenv("SERCHA_RAG_TEST_KEEP", "process")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "process", os.Getenv("SERCHA_RAG_TEST_KEEP"))
}
