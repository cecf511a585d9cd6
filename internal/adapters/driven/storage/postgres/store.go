// Package postgres implements the metadata store on PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// maxBatchParams bounds the IN (...) list of one lookup query.
const maxBatchParams = 1000

//go:embed schema.sql
var schema string

// Ensure Store implements the interface.
var _ driven.MetadataStore = (*Store)(nil)

// Store is the PostgreSQL-backed metadata store.
type Store struct {
	db *sql.DB
}

// NewStore connects to dsn and bootstraps the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginBuild starts a new inactive build.
func (s *Store) BeginBuild(ctx context.Context) (string, error) {
	buildID := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, "INSERT INTO builds (id, active) VALUES ($1, FALSE)", buildID); err != nil {
		return "", fmt.Errorf("create build: %w", err)
	}
	return buildID, nil
}

// InsertBatch stores rows in the given build inside one transaction.
func (s *Store) InsertBatch(ctx context.Context, buildID string, rows []domain.MetadataRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_chunks
			(build_id, vector_id, chunk_id, document_name, page_or_section, chunk_text)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			buildID, row.VectorID, row.ChunkID, row.DocumentName, row.PageOrSection, row.ChunkText)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", row.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Activate makes buildID the visible build and removes every other build.
// Rows of removed builds go with them through ON DELETE CASCADE.
func (s *Store) Activate(ctx context.Context, buildID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, "UPDATE builds SET active = TRUE WHERE id = $1", buildID)
	if err != nil {
		return fmt.Errorf("activate build: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("build %s: %w", buildID, domain.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM builds WHERE id <> $1", buildID); err != nil {
		return fmt.Errorf("prune old builds: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Discard removes an unactivated build and its rows.
func (s *Store) Discard(ctx context.Context, buildID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM builds WHERE id = $1 AND NOT active", buildID); err != nil {
		return fmt.Errorf("discard build: %w", err)
	}
	return nil
}

// FetchByVectorIDs returns rows of the active build for the given IDs.
func (s *Store) FetchByVectorIDs(ctx context.Context, ids []int64) ([]domain.MetadataRow, error) {
	var out []domain.MetadataRow //nolint:prealloc // size unknown from query

	for start := 0; start < len(ids); start += maxBatchParams {
		batch := ids[start:min(start+maxBatchParams, len(ids))]

		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}

		rows, err := s.db.QueryContext(ctx, `
			SELECT chunk_id, vector_id, document_name, page_or_section, chunk_text
			FROM document_chunks
			WHERE build_id = (SELECT id FROM builds WHERE active)
			  AND vector_id IN (`+placeholders(len(batch))+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("query metadata: %w", err)
		}

		batchRows, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, batchRows...)
	}

	return out, nil
}

// VectorIDs returns every vector ID of the active build in ascending order.
func (s *Store) VectorIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vector_id FROM document_chunks
		WHERE build_id = (SELECT id FROM builds WHERE active)
		ORDER BY vector_id`)
	if err != nil {
		return nil, fmt.Errorf("query vector ids: %w", err)
	}
	defer rows.Close()

	var ids []int64 //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan vector id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vector ids: %w", err)
	}
	return ids, nil
}

// Stats counts distinct documents, rows and distinct vectors of the active build.
func (s *Store) Stats(ctx context.Context) (driven.MetadataStats, error) {
	var stats driven.MetadataStats

	err := s.db.QueryRowContext(ctx, "SELECT id FROM builds WHERE active").Scan(&stats.BuildID)
	if errors.Is(err, sql.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("query active build: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT document_name), COUNT(*), COUNT(DISTINCT vector_id)
		FROM document_chunks WHERE build_id = $1`, stats.BuildID,
	).Scan(&stats.Documents, &stats.Chunks, &stats.Vectors)
	if err != nil {
		return stats, fmt.Errorf("count rows: %w", err)
	}
	return stats, nil
}

func scanRows(rows *sql.Rows) ([]domain.MetadataRow, error) {
	defer rows.Close()

	var out []domain.MetadataRow //nolint:prealloc // size unknown from query
	for rows.Next() {
		var row domain.MetadataRow
		var section sql.NullString
		if err := rows.Scan(&row.ChunkID, &row.VectorID, &row.DocumentName, &section, &row.ChunkText); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		if section.Valid {
			row.PageOrSection = &section.String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metadata: %w", err)
	}
	return out, nil
}

// placeholders returns "$1,$2,...,$n".
func placeholders(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte(',')
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}
