// Package storage selects a metadata store implementation from a DSN.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/bolt"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// DSN prefixes understood by NewMetadataStore.
const (
	PrefixPostgres   = "postgres://"
	PrefixPostgreSQL = "postgresql://"
	PrefixBolt       = "bolt://"
	PrefixMemory     = "memory://"
	PrefixSQLite     = "sqlite://"
)

// Backend names a metadata store implementation.
type Backend string

// Known backends.
const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendBolt     Backend = "bolt"
	BackendMemory   Backend = "memory"
)

// ParseDSN returns the backend selected by dsn and the backend-specific
// location. A DSN without a known scheme is a SQLite file path.
func ParseDSN(dsn string) (Backend, string, error) {
	switch {
	case strings.HasPrefix(dsn, PrefixPostgres), strings.HasPrefix(dsn, PrefixPostgreSQL):
		return BackendPostgres, dsn, nil
	case strings.HasPrefix(dsn, PrefixBolt):
		path := strings.TrimPrefix(dsn, PrefixBolt)
		if path == "" {
			return "", "", fmt.Errorf("%w: bolt DSN needs a path", domain.ErrInvalidConfig)
		}
		return BackendBolt, path, nil
	case strings.HasPrefix(dsn, PrefixMemory):
		return BackendMemory, "", nil
	case strings.HasPrefix(dsn, PrefixSQLite):
		return BackendSQLite, strings.TrimPrefix(dsn, PrefixSQLite), nil
	case strings.Contains(dsn, "://"):
		return "", "", fmt.Errorf("%w: metadata store %q", domain.ErrUnsupportedType, dsn)
	default:
		return BackendSQLite, dsn, nil
	}
}

// NewMetadataStore opens the metadata store selected by dsn.
func NewMetadataStore(ctx context.Context, dsn string) (driven.MetadataStore, error) {
	backend, location, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendPostgres:
		return postgres.NewStore(ctx, location)
	case BackendBolt:
		return bolt.NewStore(location)
	case BackendMemory:
		return memory.NewMetadataStore(), nil
	default:
		return sqlite.NewStore(location)
	}
}
