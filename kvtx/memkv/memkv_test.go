package memkv

import (
	"context"
	"testing"

	"github.com/dacapoday/idxkv/kvtx"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	db := New()
	tx := db.Begin(true)

	require.NoError(t, tx.Set(ctx, []byte("a"), []byte("1")))
	v, err := tx.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	require.NoError(t, tx.Delete(ctx, []byte("a")))
	v, err = tx.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, tx.Commit())

	tx2 := db.Begin(false)
	v, err = tx2.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()
	db := New()
	tx := db.Begin(false)
	require.ErrorIs(t, tx.Set(ctx, []byte("a"), []byte("1")), kvtx.ErrReadOnly)
}

// S4: a read-only transaction opened before a concurrent write transaction
// commits observes an empty (or stale) view throughout its lifetime, even
// after the writer commits.
func TestSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	db := New()

	reader := db.Begin(false)

	writer := db.Begin(true)
	for i := 0; i < 10; i++ {
		require.NoError(t, writer.Set(ctx, []byte{byte('a' + i)}, []byte("x")))
	}
	require.NoError(t, writer.Commit())

	for i := 0; i < 10; i++ {
		v, err := reader.Get(ctx, []byte{byte('a' + i)})
		require.NoError(t, err)
		require.Nil(t, v, "reader must not observe writer's post-snapshot commit")
	}

	fresh := db.Begin(false)
	v, err := fresh.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("x"), v)
}

func TestScanMergesPendingOverSnapshot(t *testing.T) {
	ctx := context.Background()
	db := New()

	seed := db.Begin(true)
	require.NoError(t, seed.Set(ctx, []byte("a"), []byte("1")))
	require.NoError(t, seed.Set(ctx, []byte("b"), []byte("2")))
	require.NoError(t, seed.Set(ctx, []byte("c"), []byte("3")))
	require.NoError(t, seed.Commit())

	tx := db.Begin(true)
	require.NoError(t, tx.Set(ctx, []byte("b"), []byte("overwritten")))
	require.NoError(t, tx.Delete(ctx, []byte("c")))
	require.NoError(t, tx.Set(ctx, []byte("d"), []byte("4")))

	seq, err := tx.Scan(ctx, []byte("a"), []byte("z"), 0)
	require.NoError(t, err)

	var keys, vals []string
	for k, v := range seq {
		keys = append(keys, string(k))
		vals = append(vals, string(v))
	}
	require.Equal(t, []string{"a", "b", "d"}, keys)
	require.Equal(t, []string{"1", "overwritten", "4"}, vals)
}
