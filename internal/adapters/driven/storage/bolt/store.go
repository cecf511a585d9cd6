// Package bolt implements the metadata store on an embedded bbolt file.
//
// Layout:
//
//	meta/active            -> active build ID
//	builds/<id>/rows/<vid> -> JSON MetadataRow, key is the big-endian vector ID
//	builds/<id>/chunks/<c> -> vector ID owning chunk c
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var (
	bucketMeta   = []byte("meta")
	bucketBuilds = []byte("builds")
	bucketRows   = []byte("rows")
	bucketChunks = []byte("chunks")
	keyActive    = []byte("active")
)

// Ensure Store implements the interface.
var _ driven.MetadataStore = (*Store)(nil)

// Store is the bbolt-backed metadata store.
type Store struct {
	db *bbolt.DB
}

// NewStore opens (or creates) the bolt file at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketMeta); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketBuilds)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the bolt file.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginBuild starts a new inactive build.
func (s *Store) BeginBuild(_ context.Context) (string, error) {
	buildID := uuid.NewString()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(bucketBuilds).CreateBucket([]byte(buildID))
		if err != nil {
			return err
		}
		if _, err := b.CreateBucket(bucketRows); err != nil {
			return err
		}
		_, err = b.CreateBucket(bucketChunks)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("creating build: %w", err)
	}
	return buildID, nil
}

// InsertBatch stores rows in the given build inside one bolt transaction.
func (s *Store) InsertBatch(_ context.Context, buildID string, rows []domain.MetadataRow) error {
	encoded := make([][]byte, len(rows))
	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encoding chunk %s: %w", row.ChunkID, err)
		}
		encoded[i] = data
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBuilds).Bucket([]byte(buildID))
		if b == nil {
			return fmt.Errorf("build %s: %w", buildID, domain.ErrNotFound)
		}
		vectors, chunks := b.Bucket(bucketRows), b.Bucket(bucketChunks)

		for i, row := range rows {
			key := vectorKey(row.VectorID)
			if vectors.Get(key) != nil {
				return fmt.Errorf("inserting chunk %s: duplicate vector id %d", row.ChunkID, row.VectorID)
			}
			if chunks.Get([]byte(row.ChunkID)) != nil {
				return fmt.Errorf("inserting chunk %s: duplicate chunk id", row.ChunkID)
			}
			if err := vectors.Put(key, encoded[i]); err != nil {
				return err
			}
			if err := chunks.Put([]byte(row.ChunkID), key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Activate makes buildID the visible build and removes every other build.
func (s *Store) Activate(_ context.Context, buildID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		builds := tx.Bucket(bucketBuilds)
		if builds.Bucket([]byte(buildID)) == nil {
			return fmt.Errorf("build %s: %w", buildID, domain.ErrNotFound)
		}

		var stale [][]byte
		err := builds.ForEach(func(k, _ []byte) error {
			if string(k) != buildID {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := builds.DeleteBucket(k); err != nil {
				return fmt.Errorf("pruning build %s: %w", k, err)
			}
		}

		return tx.Bucket(bucketMeta).Put(keyActive, []byte(buildID))
	})
}

// Discard removes an unactivated build.
func (s *Store) Discard(_ context.Context, buildID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if string(tx.Bucket(bucketMeta).Get(keyActive)) == buildID {
			return nil
		}
		builds := tx.Bucket(bucketBuilds)
		if builds.Bucket([]byte(buildID)) == nil {
			return nil
		}
		return builds.DeleteBucket([]byte(buildID))
	})
}

// FetchByVectorIDs returns rows of the active build for the given IDs.
func (s *Store) FetchByVectorIDs(_ context.Context, ids []int64) ([]domain.MetadataRow, error) {
	var out []domain.MetadataRow
	err := s.db.View(func(tx *bbolt.Tx) error {
		rows := activeRows(tx)
		if rows == nil {
			return nil
		}
		for _, id := range ids {
			data := rows.Get(vectorKey(id))
			if data == nil {
				continue
			}
			var row domain.MetadataRow
			if err := json.Unmarshal(data, &row); err != nil {
				return fmt.Errorf("decoding vector %d: %w", id, err)
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VectorIDs returns every vector ID of the active build in ascending order.
func (s *Store) VectorIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		rows := activeRows(tx)
		if rows == nil {
			return nil
		}
		// Keys are big-endian, so cursor order is numeric order.
		return rows.ForEach(func(k, _ []byte) error {
			ids = append(ids, int64(binary.BigEndian.Uint64(k)))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Stats counts distinct documents, rows and distinct vectors of the active build.
func (s *Store) Stats(_ context.Context) (driven.MetadataStats, error) {
	var stats driven.MetadataStats
	err := s.db.View(func(tx *bbolt.Tx) error {
		rows := activeRows(tx)
		if rows == nil {
			return nil
		}
		stats.BuildID = string(tx.Bucket(bucketMeta).Get(keyActive))

		docs := make(map[string]struct{})
		err := rows.ForEach(func(_, v []byte) error {
			var row struct {
				DocumentName string
			}
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			docs[row.DocumentName] = struct{}{}
			stats.Chunks++
			return nil
		})
		stats.Documents = len(docs)
		stats.Vectors = stats.Chunks
		return err
	})
	if err != nil {
		return driven.MetadataStats{}, fmt.Errorf("counting rows: %w", err)
	}
	return stats, nil
}

func activeRows(tx *bbolt.Tx) *bbolt.Bucket {
	active := tx.Bucket(bucketMeta).Get(keyActive)
	if active == nil {
		return nil
	}
	b := tx.Bucket(bucketBuilds).Bucket(active)
	if b == nil {
		return nil
	}
	return b.Bucket(bucketRows)
}

func vectorKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
