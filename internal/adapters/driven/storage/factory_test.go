package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/bolt"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn      string
		backend  Backend
		location string
	}{
		{"/data/metadata.db", BackendSQLite, "/data/metadata.db"},
		{"sqlite:///data/metadata.db", BackendSQLite, "/data/metadata.db"},
		{"postgres://u:p@localhost/rag", BackendPostgres, "postgres://u:p@localhost/rag"},
		{"postgresql://localhost/rag", BackendPostgres, "postgresql://localhost/rag"},
		{"bolt:///data/meta.bolt", BackendBolt, "/data/meta.bolt"},
		{"memory://", BackendMemory, ""},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			backend, location, err := ParseDSN(tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.backend, backend)
			assert.Equal(t, tt.location, location)
		})
	}
}

func TestParseDSN_Errors(t *testing.T) {
	_, _, err := ParseDSN("mysql://localhost/rag")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, _, err = ParseDSN("bolt://")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNewMetadataStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewMetadataStore(ctx, filepath.Join(dir, "metadata.db"))
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, store)
	require.NoError(t, store.Close())

	store, err = NewMetadataStore(ctx, "bolt://"+filepath.Join(dir, "meta.bolt"))
	require.NoError(t, err)
	assert.IsType(t, &bolt.Store{}, store)
	require.NoError(t, store.Close())

	store, err = NewMetadataStore(ctx, "memory://")
	require.NoError(t, err)
	assert.IsType(t, &memory.MetadataStore{}, store)
	require.NoError(t, store.Close())
}
