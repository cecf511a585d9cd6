package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/storagetest"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "metadata.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	return store
}

func TestMetadataStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) driven.MetadataStore {
		return setupTestStore(t)
	})
}

func TestNewStore_ErrorHandling(t *testing.T) {
	// Test with invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path/metadata.db")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "metadata.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "metadata.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)

	ctx := t.Context()
	buildID, err := store.BeginBuild(ctx)
	require.NoError(t, err)
	require.NoError(t, store.InsertBatch(ctx, buildID, []domain.MetadataRow{storagetest.Row("doc", 0, 0)}))
	require.NoError(t, store.Activate(ctx, buildID))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	ids, err := reopened.VectorIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, ids)
}

func TestMigrate_RecordsVersion(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	// Running again is a no-op.
	require.NoError(t, store.migrate(migrations.FS))
	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}
