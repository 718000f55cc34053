package core

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/docmirror/pkg/model"
)

func newTestStore(t *testing.T, mutate ...func(*Config)) *SQLiteStore {
	t.Helper()

	config := DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	for _, m := range mutate {
		m(&config)
	}

	store, err := NewWithConfig(config)
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func key(t *testing.T, s string) model.DocumentKey {
	t.Helper()
	k, err := model.ParseKey(s)
	require.NoError(t, err)
	return k
}

func doc(t *testing.T, keyPath, fields string) *model.Document {
	t.Helper()
	return model.NewDocument(key(t, keyPath), model.SnapshotVersion{Seconds: 1}, []byte(fields))
}

func TestAddThenGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := doc(t, "rooms/abc", `{"title":"hello"}`)
	require.NoError(t, store.Add(ctx, want))

	got, err := store.Get(ctx, want.Key())
	require.NoError(t, err)
	require.NotNil(t, got)

	gotDoc, ok := got.(*model.Document)
	require.True(t, ok, "expected *model.Document, got %T", got)
	assert.True(t, gotDoc.Key().Equal(want.Key()))
	assert.Zero(t, gotDoc.Version().Compare(want.Version()))
	assert.True(t, bytes.Equal(gotDoc.Fields(), want.Fields()))
}

func TestGetAbsentKey(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), key(t, "rooms/missing"))
	require.NoError(t, err, "absence is not an error")
	assert.Nil(t, got)
}

func TestAddOverwritesWithoutMerge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	k := key(t, "rooms/abc")
	require.NoError(t, store.Add(ctx, model.NewDocument(k, model.SnapshotVersion{Seconds: 1}, []byte("v1"))))
	require.NoError(t, store.Add(ctx, model.NewNoDocument(k, model.SnapshotVersion{Seconds: 2})))

	got, err := store.Get(ctx, k)
	require.NoError(t, err)

	tombstone, ok := got.(*model.NoDocument)
	require.True(t, ok, "expected the tombstone to fully replace the document, got %T", got)
	assert.Equal(t, int64(2), tombstone.Version().Seconds)
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	k := key(t, "rooms/abc")
	require.NoError(t, store.Add(ctx, doc(t, "rooms/abc", "x")))
	require.NoError(t, store.Remove(ctx, k))

	got, err := store.Get(ctx, k)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Removing an absent key is not an error.
	require.NoError(t, store.Remove(ctx, k))
}

func TestGetAllEmptyInput(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestGetAllSkipsAbsentKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, doc(t, "rooms/a", "a")))
	require.NoError(t, store.Add(ctx, doc(t, "rooms/c", "c")))

	got, err := store.GetAll(ctx, []model.DocumentKey{
		key(t, "rooms/a"),
		key(t, "rooms/b"),
		key(t, "rooms/c"),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rooms/a", got[0].Key().String())
	assert.Equal(t, "rooms/c", got[1].Key().String())
}

func TestGetAllAcrossChunksIsSorted(t *testing.T) {
	// A chunk size of 3 forces several queries for a small key set; the
	// combined result must still be globally key-sorted and identical as a
	// set to individual lookups.
	store := newTestStore(t, func(c *Config) { c.ChunkSize = 3 })
	ctx := context.Background()

	const n = 10
	keys := make([]model.DocumentKey, 0, n)
	for i := 0; i < n; i++ {
		d := doc(t, fmt.Sprintf("rooms/doc%02d", i), fmt.Sprintf("payload %d", i))
		require.NoError(t, store.Add(ctx, d))
		keys = append(keys, d.Key())
	}

	// Request in an order that interleaves across chunks.
	shuffled := make([]model.DocumentKey, 0, n)
	for i := n - 1; i >= 0; i-- {
		shuffled = append(shuffled, keys[i])
	}

	got, err := store.GetAll(ctx, shuffled)
	require.NoError(t, err)
	require.Len(t, got, n)

	for i := 1; i < len(got); i++ {
		assert.Negative(t, got[i-1].Key().Compare(got[i].Key()),
			"results must be sorted: %s before %s", got[i-1].Key(), got[i].Key())
	}

	for _, k := range keys {
		single, err := store.Get(ctx, k)
		require.NoError(t, err)
		require.NotNil(t, single, "chunked result must match individual lookups for %s", k)
	}
}

func TestGetAllSingleChunk(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, doc(t, "rooms/b", "b")))
	require.NoError(t, store.Add(ctx, doc(t, "rooms/a", "a")))

	got, err := store.GetAll(ctx, []model.DocumentKey{key(t, "rooms/b"), key(t, "rooms/a")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// A single chunk is already ordered by the store.
	assert.Equal(t, "rooms/a", got[0].Key().String())
	assert.Equal(t, "rooms/b", got[1].Key().String())
}

func TestGetAllMatchingQueryScansOnlyImmediateChildren(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, doc(t, "rooms/a", "room a")))
	require.NoError(t, store.Add(ctx, doc(t, "rooms/b", "room b")))
	// Byte-prefixed by the rooms scan range but two levels deeper.
	require.NoError(t, store.Add(ctx, doc(t, "rooms/a/messages/m1", "nested")))
	// Sibling collection outside the range.
	require.NoError(t, store.Add(ctx, doc(t, "halls/x", "other")))

	rooms, err := model.ParsePath("rooms")
	require.NoError(t, err)

	got, err := store.GetAllMatchingQuery(ctx, model.NewQuery(rooms))
	require.NoError(t, err)

	require.Equal(t, 2, got.Len())
	keys := got.Keys()
	assert.Equal(t, "rooms/a", keys[0].String())
	assert.Equal(t, "rooms/b", keys[1].String())
}

func TestGetAllMatchingQueryExcludesTombstonesAndUnknowns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, doc(t, "rooms/a", "alive")))
	require.NoError(t, store.Add(ctx, model.NewNoDocument(key(t, "rooms/b"), model.SnapshotVersion{Seconds: 1})))
	require.NoError(t, store.Add(ctx, model.NewUnknownDocument(key(t, "rooms/c"), model.SnapshotVersion{Seconds: 1})))

	rooms, err := model.ParsePath("rooms")
	require.NoError(t, err)

	got, err := store.GetAllMatchingQuery(ctx, model.NewQuery(rooms))
	require.NoError(t, err)

	require.Equal(t, 1, got.Len())
	assert.Equal(t, "rooms/a", got.Keys()[0].String())
}

func TestGetAllMatchingQueryAppliesFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, doc(t, "rooms/a", "keep me")))
	require.NoError(t, store.Add(ctx, doc(t, "rooms/b", "drop me")))

	rooms, err := model.ParsePath("rooms")
	require.NoError(t, err)
	query := model.NewQuery(rooms).Where(func(d *model.Document) bool {
		return bytes.Contains(d.Fields(), []byte("keep"))
	})

	got, err := store.GetAllMatchingQuery(ctx, query)
	require.NoError(t, err)

	require.Equal(t, 1, got.Len())
	assert.Equal(t, "rooms/a", got.Keys()[0].String())
}

func TestGetAllMatchingQuerySpecialKeyBytes(t *testing.T) {
	// Segments containing the escape and separator bytes must not leak
	// documents across collection boundaries.
	store := newTestStore(t)
	ctx := context.Background()

	inside, err := model.KeyFromSegments("rooms", "a\x01b")
	require.NoError(t, err)
	outside, err := model.KeyFromSegments("rooms\x01", "a")
	require.NoError(t, err)

	require.NoError(t, store.Add(ctx, model.NewDocument(inside, model.SnapshotVersion{Seconds: 1}, []byte("in"))))
	require.NoError(t, store.Add(ctx, model.NewDocument(outside, model.SnapshotVersion{Seconds: 1}, []byte("out"))))

	got, err := store.GetAllMatchingQuery(ctx, model.NewQuery(model.NewResourcePath("rooms")))
	require.NoError(t, err)

	require.Equal(t, 1, got.Len())
	_, ok := got.Get(inside)
	assert.True(t, ok)
}

func TestGetCorruptRecordIsFatal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	d := doc(t, "rooms/abc", "x")
	require.NoError(t, store.Add(ctx, d))

	// Overwrite the stored blob with bytes this codec never wrote.
	_, err := store.db.ExecContext(ctx,
		"UPDATE remote_documents SET contents = ?", []byte("garbage"))
	require.NoError(t, err)

	_, err = store.Get(ctx, d.Key())
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = store.GetAll(ctx, []model.DocumentKey{d.Key()})
	assert.ErrorIs(t, err, ErrCorrupt)

	rooms, perr := model.ParsePath("rooms")
	require.NoError(t, perr)
	_, err = store.GetAllMatchingQuery(ctx, model.NewQuery(rooms))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	ctx := context.Background()
	k := key(t, "rooms/abc")

	assert.ErrorIs(t, store.Add(ctx, doc(t, "rooms/abc", "x")), ErrStoreClosed)
	assert.ErrorIs(t, store.Remove(ctx, k), ErrStoreClosed)

	_, err := store.Get(ctx, k)
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = store.GetAll(ctx, []model.DocumentKey{k})
	assert.ErrorIs(t, err, ErrStoreClosed)

	rooms, perr := model.ParsePath("rooms")
	require.NoError(t, perr)
	_, err = store.GetAllMatchingQuery(ctx, model.NewQuery(rooms))
	assert.ErrorIs(t, err, ErrStoreClosed)

	assert.ErrorIs(t, store.RunInTransaction(ctx, func(tx *Tx) error { return nil }), ErrStoreClosed)
}
