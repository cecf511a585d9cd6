package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// maxBatchParams bounds the IN (...) list of one lookup query.
const maxBatchParams = 500

// Ensure Store implements the interface.
var _ driven.MetadataStore = (*Store)(nil)

// Store is the SQLite-backed metadata store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at dbPath.
// If dbPath is empty, defaults to ~/.sercha-rag/metadata.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".sercha-rag", "metadata.db")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// BeginBuild starts a new inactive build.
func (s *Store) BeginBuild(ctx context.Context) (string, error) {
	buildID := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, "INSERT INTO builds (id, active) VALUES (?, 0)", buildID); err != nil {
		return "", fmt.Errorf("creating build: %w", err)
	}
	return buildID, nil
}

// InsertBatch stores rows in the given build inside one transaction.
func (s *Store) InsertBatch(ctx context.Context, buildID string, rows []domain.MetadataRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_chunks
			(build_id, vector_id, chunk_id, document_name, page_or_section, chunk_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			buildID, row.VectorID, row.ChunkID, row.DocumentName, row.PageOrSection, row.ChunkText)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", row.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Activate makes buildID the visible build and removes every other build.
func (s *Store) Activate(ctx context.Context, buildID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, "UPDATE builds SET active = 1 WHERE id = ?", buildID)
	if err != nil {
		return fmt.Errorf("activating build: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("build %s: %w", buildID, domain.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM document_chunks WHERE build_id != ?", buildID); err != nil {
		return fmt.Errorf("pruning old rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM builds WHERE id != ?", buildID); err != nil {
		return fmt.Errorf("pruning old builds: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Discard removes an unactivated build and its rows.
func (s *Store) Discard(ctx context.Context, buildID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM document_chunks
		WHERE build_id = ? AND build_id IN (SELECT id FROM builds WHERE active = 0)
	`, buildID); err != nil {
		return fmt.Errorf("discarding rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM builds WHERE id = ? AND active = 0", buildID); err != nil {
		return fmt.Errorf("discarding build: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// FetchByVectorIDs returns rows of the active build for the given IDs.
func (s *Store) FetchByVectorIDs(ctx context.Context, ids []int64) ([]domain.MetadataRow, error) {
	var rows []domain.MetadataRow //nolint:prealloc // size unknown from query

	for start := 0; start < len(ids); start += maxBatchParams {
		batch := ids[start:min(start+maxBatchParams, len(ids))]

		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}

		query := `
			SELECT chunk_id, vector_id, document_name, page_or_section, chunk_text
			FROM document_chunks
			WHERE build_id = (SELECT id FROM builds WHERE active = 1)
			  AND vector_id IN (` + placeholders(len(batch)) + `)`

		batchRows, err := s.queryRows(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		rows = append(rows, batchRows...)
	}

	return rows, nil
}

// VectorIDs returns every vector ID of the active build in ascending order.
func (s *Store) VectorIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vector_id FROM document_chunks
		WHERE build_id = (SELECT id FROM builds WHERE active = 1)
		ORDER BY vector_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying vector ids: %w", err)
	}
	defer rows.Close()

	var ids []int64 //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning vector id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vector ids: %w", err)
	}

	return ids, nil
}

// Stats counts distinct documents, rows and distinct vectors of the active build.
func (s *Store) Stats(ctx context.Context) (driven.MetadataStats, error) {
	var stats driven.MetadataStats

	err := s.db.QueryRowContext(ctx, "SELECT id FROM builds WHERE active = 1").Scan(&stats.BuildID)
	if errors.Is(err, sql.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("querying active build: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT document_name), COUNT(*), COUNT(DISTINCT vector_id)
		FROM document_chunks WHERE build_id = ?
	`, stats.BuildID).Scan(&stats.Documents, &stats.Chunks, &stats.Vectors)
	if err != nil {
		return stats, fmt.Errorf("counting rows: %w", err)
	}

	return stats, nil
}

func (s *Store) queryRows(ctx context.Context, query string, args ...any) ([]domain.MetadataRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	defer rows.Close()

	var out []domain.MetadataRow //nolint:prealloc // size unknown from query
	for rows.Next() {
		var row domain.MetadataRow
		var section sql.NullString
		if err := rows.Scan(&row.ChunkID, &row.VectorID, &row.DocumentName, &section, &row.ChunkText); err != nil {
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		if section.Valid {
			row.PageOrSection = &section.String
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating metadata: %w", err)
	}

	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
