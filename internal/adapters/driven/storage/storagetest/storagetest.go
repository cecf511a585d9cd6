// Package storagetest provides a behavioural test suite shared by every
// driven.MetadataStore implementation.
package storagetest

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) driven.MetadataStore

// Row builds a metadata row for vector id in document doc.
func Row(doc string, seq int, id int64) domain.MetadataRow {
	return domain.MetadataRow{
		ChunkID:      domain.ChunkID(doc, seq),
		VectorID:     id,
		DocumentName: doc,
		ChunkText:    "text of " + domain.ChunkID(doc, seq),
	}
}

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("EmptyStore", func(t *testing.T) { testEmptyStore(t, newStore) })
	t.Run("InsertActivateFetch", func(t *testing.T) { testInsertActivateFetch(t, newStore) })
	t.Run("UnknownIDsSkipped", func(t *testing.T) { testUnknownIDsSkipped(t, newStore) })
	t.Run("DuplicateRejected", func(t *testing.T) { testDuplicateRejected(t, newStore) })
	t.Run("BatchAtomic", func(t *testing.T) { testBatchAtomic(t, newStore) })
	t.Run("EmptyBatch", func(t *testing.T) { testEmptyBatch(t, newStore) })
	t.Run("InactiveBuildInvisible", func(t *testing.T) { testInactiveBuildInvisible(t, newStore) })
	t.Run("ActivateReplacesOldBuild", func(t *testing.T) { testActivateReplacesOldBuild(t, newStore) })
	t.Run("ActivateUnknownBuild", func(t *testing.T) { testActivateUnknownBuild(t, newStore) })
	t.Run("Discard", func(t *testing.T) { testDiscard(t, newStore) })
	t.Run("Stats", func(t *testing.T) { testStats(t, newStore) })
	t.Run("LargeBatchFetch", func(t *testing.T) { testLargeBatchFetch(t, newStore) })
}

func open(t *testing.T, newStore Factory) driven.MetadataStore {
	t.Helper()
	store := newStore(t)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, store driven.MetadataStore, rows ...domain.MetadataRow) string {
	t.Helper()
	ctx := context.Background()

	buildID, err := store.BeginBuild(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, buildID)

	require.NoError(t, store.InsertBatch(ctx, buildID, rows))
	require.NoError(t, store.Activate(ctx, buildID))
	return buildID
}

func sortRows(rows []domain.MetadataRow) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].VectorID < rows[j].VectorID })
}

func testEmptyStore(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)

	rows, err := store.FetchByVectorIDs(ctx, []int64{0, 1})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = store.FetchByVectorIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	ids, err := store.VectorIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, driven.MetadataStats{}, stats)
}

func testInsertActivateFetch(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)

	section := "page 3"
	withSection := Row("guide", 1, 1)
	withSection.PageOrSection = &section

	seed(t, store, Row("guide", 0, 0), withSection, Row("notes", 0, 2))

	rows, err := store.FetchByVectorIDs(ctx, []int64{2, 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	sortRows(rows)

	assert.Equal(t, withSection.ChunkID, rows[0].ChunkID)
	assert.Equal(t, int64(1), rows[0].VectorID)
	assert.Equal(t, "guide", rows[0].DocumentName)
	require.NotNil(t, rows[0].PageOrSection)
	assert.Equal(t, "page 3", *rows[0].PageOrSection)
	assert.Equal(t, withSection.ChunkText, rows[0].ChunkText)

	assert.Equal(t, "notes_0", rows[1].ChunkID)
	assert.Nil(t, rows[1].PageOrSection)

	ids, err := store.VectorIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, ids)
}

func testUnknownIDsSkipped(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)
	seed(t, store, Row("a", 0, 0), Row("a", 1, 1))

	rows, err := store.FetchByVectorIDs(ctx, []int64{1, 20, 99})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].VectorID)
}

func testDuplicateRejected(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)

	buildID, err := store.BeginBuild(ctx)
	require.NoError(t, err)
	require.NoError(t, store.InsertBatch(ctx, buildID, []domain.MetadataRow{Row("a", 0, 0)}))

	dupChunk := Row("a", 0, 1)
	assert.Error(t, store.InsertBatch(ctx, buildID, []domain.MetadataRow{dupChunk}), "duplicate chunk id must fail")

	dupVector := Row("b", 0, 0)
	assert.Error(t, store.InsertBatch(ctx, buildID, []domain.MetadataRow{dupVector}), "duplicate vector id must fail")

	inBatch := []domain.MetadataRow{Row("c", 0, 5), Row("c", 1, 5)}
	assert.Error(t, store.InsertBatch(ctx, buildID, inBatch), "duplicate inside one batch must fail")
}

// A failing batch leaves none of its rows behind, so earlier batches stay intact.
func testBatchAtomic(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)

	buildID, err := store.BeginBuild(ctx)
	require.NoError(t, err)
	require.NoError(t, store.InsertBatch(ctx, buildID, []domain.MetadataRow{Row("a", 0, 0), Row("a", 1, 1)}))

	bad := []domain.MetadataRow{Row("b", 0, 2), Row("b", 1, 3), Row("b", 2, 1)}
	require.Error(t, store.InsertBatch(ctx, buildID, bad))

	// The rows of the failed batch are free to insert again.
	require.NoError(t, store.InsertBatch(ctx, buildID, []domain.MetadataRow{Row("b", 0, 2), Row("b", 1, 3)}))
	require.NoError(t, store.Activate(ctx, buildID))

	ids, err := store.VectorIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3}, ids)
}

func testEmptyBatch(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)

	buildID, err := store.BeginBuild(ctx)
	require.NoError(t, err)
	require.NoError(t, store.InsertBatch(ctx, buildID, nil))
	require.NoError(t, store.Activate(ctx, buildID))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
}

func testInactiveBuildInvisible(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)
	seed(t, store, Row("old", 0, 0))

	buildID, err := store.BeginBuild(ctx)
	require.NoError(t, err)
	require.NoError(t, store.InsertBatch(ctx, buildID, []domain.MetadataRow{Row("new", 0, 0), Row("new", 1, 1)}))

	rows, err := store.FetchByVectorIDs(ctx, []int64{0, 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "old", rows[0].DocumentName)
}

func testActivateReplacesOldBuild(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)
	first := seed(t, store, Row("old", 0, 0), Row("old", 1, 1))
	second := seed(t, store, Row("new", 0, 0))
	assert.NotEqual(t, first, second)

	rows, err := store.FetchByVectorIDs(ctx, []int64{0, 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].DocumentName)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, stats.BuildID)
	assert.Equal(t, 1, stats.Chunks)

	// The replaced build is gone for good.
	assert.Error(t, store.Activate(ctx, first))
}

func testActivateUnknownBuild(t *testing.T, newStore Factory) {
	store := open(t, newStore)
	err := store.Activate(context.Background(), "no-such-build")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDiscard(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)
	active := seed(t, store, Row("keep", 0, 0))

	buildID, err := store.BeginBuild(ctx)
	require.NoError(t, err)
	require.NoError(t, store.InsertBatch(ctx, buildID, []domain.MetadataRow{Row("drop", 0, 0)}))
	require.NoError(t, store.Discard(ctx, buildID))
	assert.ErrorIs(t, store.Activate(ctx, buildID), domain.ErrNotFound)

	// Discarding the active build is a no-op.
	require.NoError(t, store.Discard(ctx, active))
	rows, err := store.FetchByVectorIDs(ctx, []int64{0})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "keep", rows[0].DocumentName)
}

func testStats(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)
	buildID := seed(t, store,
		Row("alpha", 0, 0), Row("alpha", 1, 1), Row("alpha", 3, 2),
		Row("beta", 0, 3),
		Row("gamma", 2, 4),
	)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, driven.MetadataStats{BuildID: buildID, Documents: 3, Chunks: 5, Vectors: 5}, stats)
}

func testLargeBatchFetch(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := open(t, newStore)

	const n = 1200
	rows := make([]domain.MetadataRow, n)
	ids := make([]int64, n)
	for i := range rows {
		rows[i] = Row("bulk", i, int64(i))
		ids[i] = int64(i)
	}
	seed(t, store, rows...)

	got, err := store.FetchByVectorIDs(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, got, n)
}
