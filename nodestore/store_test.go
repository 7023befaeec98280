package nodestore

import (
	"context"
	"testing"

	"github.com/dacapoday/idxkv/bkeys"
	"github.com/dacapoday/idxkv/kvtx/memkv"
	"github.com/stretchr/testify/require"
)

type fixedScope []byte

func (f fixedScope) Scope() []byte { return f }

func TestStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tx := db.Begin(true)

	store, err := Open(tx, fixedScope("/scope/"), bkeys.VariantTrie, Options{})
	require.NoError(t, err)

	state, err := store.LoadState(ctx, 100)
	require.NoError(t, err)
	require.EqualValues(t, 100, state.Order)
	require.EqualValues(t, 0, state.RootID)
	require.EqualValues(t, 1, state.NextID)

	state.RootID = store.NewID(state)
	require.NoError(t, store.SaveState(ctx, state))
	require.NoError(t, tx.Commit())

	tx2 := db.Begin(false)
	store2, err := Open(tx2, fixedScope("/scope/"), bkeys.VariantTrie, Options{})
	require.NoError(t, err)
	loaded, err := store2.LoadState(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, state.RootID, loaded.RootID)
	require.EqualValues(t, 2, loaded.NextID)
}

func TestPutGetNodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tx := db.Begin(true)
	store, err := Open(tx, fixedScope("/scope/"), bkeys.VariantTrie, Options{})
	require.NoError(t, err)

	c, _ := bkeys.New(bkeys.VariantTrie)
	c.Insert([]byte("k"), 42)
	node := &Node{ID: 7, Kind: KindLeaf, Container: c}

	require.NoError(t, store.PutNode(ctx, node))

	got, err := store.GetNode(ctx, 7)
	require.NoError(t, err)
	v, ok := got.Container.Get([]byte("k"))
	require.True(t, ok)
	require.EqualValues(t, 42, v)
}

func TestGetNodeMissingIsCorruptTree(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tx := db.Begin(true)
	store, err := Open(tx, fixedScope("/scope/"), bkeys.VariantTrie, Options{})
	require.NoError(t, err)

	_, err = store.GetNode(ctx, 999)
	require.ErrorIs(t, err, ErrCorruptTree)
}

func TestInternalNodeChildrenRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	tx := db.Begin(true)
	store, err := Open(tx, fixedScope("/scope/"), bkeys.VariantFst, Options{})
	require.NoError(t, err)

	c, _ := bkeys.New(bkeys.VariantFst)
	c.Insert([]byte("m"), 5)
	node := &Node{ID: 3, Kind: KindInternal, Container: c, Children: []uint64{1, 2}}
	require.NoError(t, store.PutNode(ctx, node))

	// Force a fresh decode path by opening a new store over the same tx.
	store2, err := Open(tx, fixedScope("/scope/"), bkeys.VariantFst, Options{})
	require.NoError(t, err)
	got, err := store2.GetNode(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, KindInternal, got.Kind)
	require.Equal(t, []uint64{1, 2}, got.Children)
}
