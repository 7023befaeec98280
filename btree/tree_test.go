package btree_test

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/dacapoday/idxkv/bkeys"
	"github.com/dacapoday/idxkv/btree"
	"github.com/dacapoday/idxkv/kvtx/memkv"
	"github.com/stretchr/testify/require"
)

type scope []byte

func (s scope) Scope() []byte { return s }

func TestSearchMissingOnEmptyTree(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tree := btree.Open(scope("t1"), btree.Options{})

	tx := db.Begin(false)
	_, found, err := tree.Search(ctx, tx, []byte("anything"))
	require.NoError(t, err)
	require.False(t, found)
}

// TestLargeShuffledInsertion is S2: an order-100 tree with 2000 shuffled
// insertions, every key then found by Search, state.Count == 2000.
func TestLargeShuffledInsertion(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tree := btree.Open(scope("big"), btree.Options{Order: 100})

	const n = 2000
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = fmt.Sprintf("%04d", i)
	}
	order := rand.New(rand.NewSource(7)).Perm(n)

	tx := db.Begin(true)
	for _, i := range order {
		require.NoError(t, tree.Insert(ctx, tx, []byte(keys[i]), bkeys.Payload(i*10)))
	}
	require.NoError(t, tx.Commit())

	tx2 := db.Begin(false)
	p, found, err := tree.Search(ctx, tx2, []byte("1337"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, bkeys.Payload(13370), p)

	for i, k := range keys {
		p, found, err := tree.Search(ctx, tx2, []byte(k))
		require.NoError(t, err)
		require.Truef(t, found, "key %s missing", k)
		require.Equal(t, bkeys.Payload(i*10), p)
	}

	// Property 5: height <= ceil(log_ceil(m/2)(N+1)) + 1.
	stats, err := tree.Stats(ctx, tx2)
	require.NoError(t, err)
	require.EqualValues(t, n, stats.Count)
	require.LessOrEqual(t, stats.Height, heightBound(100, n))
}

// heightBound computes spec.md §8 property 5's bound: ceil(log_ceil(m/2)(N+1)) + 1.
func heightBound(order uint32, n int) uint32 {
	base := math.Ceil(float64(order) / 2)
	bound := math.Ceil(math.Log(float64(n)+1) / math.Log(base))
	return uint32(bound) + 1
}

// TestSmallOrderForcesSplits is S3: an order-4 tree growing past one
// level via repeated splits.
func TestSmallOrderForcesSplits(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tree := btree.Open(scope("small"), btree.Options{Order: 4})

	tx := db.Begin(true)
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		require.NoError(t, tree.Insert(ctx, tx, []byte(k), bkeys.Payload(k[0])))
	}
	require.NoError(t, tx.Commit())

	tx2 := db.Begin(false)
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		p, found, err := tree.Search(ctx, tx2, []byte(k))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, bkeys.Payload(k[0]), p)
	}

	stats, err := tree.Stats(ctx, tx2)
	require.NoError(t, err)
	require.EqualValues(t, 8, stats.Count)
	require.LessOrEqual(t, stats.Height, heightBound(4, 8))
}

// TestReopenAcrossTransactions is S5: a fresh Tree value bound to the
// same scope, opened in a brand new transaction, sees data committed
// earlier.
func TestReopenAcrossTransactions(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()

	tree1 := btree.Open(scope("reopen"), btree.Options{Order: 8})
	tx := db.Begin(true)
	for _, k := range []string{"m", "n", "o", "p"} {
		require.NoError(t, tree1.Insert(ctx, tx, []byte(k), bkeys.Payload(k[0])))
	}
	require.NoError(t, tx.Commit())

	tree2 := btree.Open(scope("reopen"), btree.Options{Order: 8})
	tx2 := db.Begin(false)
	p, found, err := tree2.Search(ctx, tx2, []byte("o"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, bkeys.Payload('o'), p)
}

// TestNodeTooLarge is S6: a MaxNodeSize low enough that inserting forces
// ErrNodeTooLarge rather than ever letting a node grow unbounded.
func TestNodeTooLarge(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tree := btree.Open(scope("huge"), btree.Options{Order: 100000, MaxNodeSize: 8})

	tx := db.Begin(true)
	err := tree.Insert(ctx, tx, []byte("a-key-longer-than-the-limit"), 1)
	require.ErrorIs(t, err, btree.ErrNodeTooLarge)
}

// TestIterOrderedIsSorted is property 4: the tree is an ordered map.
func TestIterOrderedIsSorted(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tree := btree.Open(scope("iter"), btree.Options{Order: 4})

	tx := db.Begin(true)
	input := []string{"delta", "alpha", "echo", "charlie", "bravo", "foxtrot"}
	for _, k := range input {
		require.NoError(t, tree.Insert(ctx, tx, []byte(k), bkeys.Payload(k[0])))
	}
	require.NoError(t, tx.Commit())

	tx2 := db.Begin(false)
	seq, err := tree.IterOrdered(ctx, tx2)
	require.NoError(t, err)

	var got []string
	for k := range seq {
		got = append(got, string(k))
	}
	require.Equal(t, []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"}, got)
}

// TestReinsertIsIdempotent is property 8: inserting an existing key with
// the same payload does not change the tree's element count.
func TestReinsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tree := btree.Open(scope("idempotent"), btree.Options{Order: 4})

	tx := db.Begin(true)
	for _, k := range []string{"x", "y", "z"} {
		require.NoError(t, tree.Insert(ctx, tx, []byte(k), bkeys.Payload(k[0])))
	}
	require.NoError(t, tree.Insert(ctx, tx, []byte("y"), bkeys.Payload('y')))
	require.NoError(t, tx.Commit())

	tx2 := db.Begin(false)
	seq, err := tree.IterOrdered(ctx, tx2)
	require.NoError(t, err)
	count := 0
	for range seq {
		count++
	}
	require.Equal(t, 3, count)
}

// TestUpdateExistingKeyChangesPayload covers updating a key found above
// the leaf level (promoted into an internal node by an earlier split).
func TestUpdateExistingKeyChangesPayload(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tree := btree.Open(scope("update"), btree.Options{Order: 4})

	tx := db.Begin(true)
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		require.NoError(t, tree.Insert(ctx, tx, []byte(k), bkeys.Payload(1)))
	}
	require.NoError(t, tree.Insert(ctx, tx, []byte("c"), bkeys.Payload(99)))
	require.NoError(t, tx.Commit())

	tx2 := db.Begin(false)
	p, found, err := tree.Search(ctx, tx2, []byte("c"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, bkeys.Payload(99), p)
}

func TestInsertOnReadOnlyTxRejected(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tree := btree.Open(scope("ro"), btree.Options{})

	tx := db.Begin(false)
	err := tree.Insert(ctx, tx, []byte("k"), 1)
	require.Error(t, err)
}
